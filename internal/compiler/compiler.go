// Package compiler 是 documix 的编排层：收集文件、调度转换、
// 装配产物并汇总统计。整个流程严格串行。
package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/archive"
	"github.com/nerdneilsfield/go-documix/internal/assembler"
	"github.com/nerdneilsfield/go-documix/internal/collector"
	"github.com/nerdneilsfield/go-documix/internal/config"
	"github.com/nerdneilsfield/go-documix/internal/converter"
	"github.com/nerdneilsfield/go-documix/internal/email"
	"github.com/nerdneilsfield/go-documix/internal/stats"
)

// Summary 一次打包运行的结果摘要
type Summary struct {
	RunID      string
	Mode       collector.Mode
	TotalFiles int
	TotalChars int
	TotalToken int
	Output     string
	Suspicious []string
	Elapsed    time.Duration
}

// Compiler 文档打包编排器
type Compiler struct {
	cfg        *config.Config
	logger     *zap.Logger
	version    string
	runner     *converter.ToolRunner
	ws         *converter.WorkspaceManager
	dispatcher *converter.Dispatcher
	agg        *stats.Aggregator
	console    io.Writer
}

// New 创建编排器并组装全部协作对象。
// 容器展开器（ZIP、邮件）在这里注册进调度器。
func New(cfg *config.Config, logger *zap.Logger, version string) *Compiler {
	runner := converter.NewToolRunner(logger)
	for name, tc := range cfg.Tools {
		runner.Override(name, tc.Command, tc.Disabled)
	}

	ws := converter.NewWorkspaceManager(logger)
	dispatcher := converter.NewDispatcher(runner, ws, cfg.MaxDepth, logger)
	dispatcher.RegisterContainer(".zip", archive.NewExpander(ws, dispatcher, cfg.IncludeExtensions, logger))
	dispatcher.RegisterContainer(".eml", email.NewExpander(ws, dispatcher, logger))

	return &Compiler{
		cfg:        cfg,
		logger:     logger,
		version:    version,
		runner:     runner,
		ws:         ws,
		dispatcher: dispatcher,
		agg:        stats.NewAggregator(),
		console:    os.Stdout,
	}
}

// SetConsole 重定向控制台输出（测试用）
func (c *Compiler) SetConsole(w io.Writer) {
	c.console = w
}

// Dispatcher 暴露底层调度器
func (c *Compiler) Dispatcher() *converter.Dispatcher {
	return c.dispatcher
}

// Run 执行一次完整的打包。临时工作区在运行结束时统一清理。
func (c *Compiler) Run(sourceDir string) (*Summary, error) {
	start := time.Now()
	defer c.ws.CleanupAll()

	c.logger.Info("run started",
		zap.String("run_id", c.ws.RunID()),
		zap.String("source", sourceDir))

	c.printf("📦 DocuMix v%s\n", c.version)

	// 源路径可以是目录，也可以是单个文件（比如一封 .eml）
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("stat source %s: %w", sourceDir, err)
	}

	var files []string
	var col *collector.Collector
	if info.IsDir() {
		col = collector.New(sourceDir, c.cfg.Recursive, c.cfg.IncludeExtensions, c.cfg.ExcludePatterns, c.logger)
		files, err = col.Collect()
		if err != nil {
			return nil, fmt.Errorf("collect files: %w", err)
		}
	} else {
		files = []string{sourceDir}
		sourceDir = filepath.Dir(sourceDir)
		col = collector.New(sourceDir, false, c.cfg.IncludeExtensions, c.cfg.ExcludePatterns, c.logger)
	}
	if len(files) == 0 {
		c.printf("❌ No files found to process.\n")
		return nil, fmt.Errorf("no files found to process in %s", sourceDir)
	}

	c.printf("🔎 Checking files for security issues...\n")
	suspicious := collector.SuspiciousFiles(files)
	relSuspicious := make([]string, 0, len(suspicious))
	for _, path := range suspicious {
		if rel, relErr := filepath.Rel(sourceDir, path); relErr == nil {
			relSuspicious = append(relSuspicious, rel)
		} else {
			relSuspicious = append(relSuspicious, path)
		}
	}

	c.printf("📊 Collecting file statistics...\n")

	mode := collector.DetectMode(files, collector.Mode(c.cfg.ForceMode))
	c.logger.Info("processing mode selected",
		zap.String("mode", string(mode)),
		zap.Int("files", len(files)))

	out, err := os.Create(c.cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", c.cfg.OutputFile, err)
	}
	defer out.Close()

	asm := assembler.New(out)

	switch mode {
	case collector.ModeSingleEmail:
		err = c.runSingleEmail(asm, files[0])
	default:
		err = c.runStandard(asm, col, sourceDir, files)
	}
	if err != nil {
		return nil, err
	}

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close output file: %w", err)
	}

	c.printf("\n✔ Packing completed successfully!\n")

	totalFiles, totalChars, totalTokens := c.agg.Totals()
	summary := &Summary{
		RunID:      c.ws.RunID(),
		Mode:       mode,
		TotalFiles: totalFiles,
		TotalChars: totalChars,
		TotalToken: totalTokens,
		Output:     c.cfg.OutputFile,
		Suspicious: relSuspicious,
		Elapsed:    time.Since(start),
	}

	reporter := stats.NewReporter(c.console)
	if !c.cfg.Quiet {
		reporter.ShowTopFiles(c.agg)
		reporter.ShowSecurity(relSuspicious)
		reporter.ShowSummary(c.agg, c.cfg.OutputFile, summary.Elapsed)
		c.printf("\n🎉 All Done! Your documents have been successfully packed.\n")
	}

	return summary, nil
}

// runStandard 标准合并文档布局
func (c *Compiler) runStandard(asm *assembler.Assembler, col *collector.Collector, sourceDir string, files []string) error {
	structure, err := col.Structure()
	if err != nil {
		return fmt.Errorf("directory structure: %w", err)
	}

	if err := asm.WriteStandardHeader(sourceDir, len(files), structure); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var bar *pterm.ProgressbarPrinter
	if !c.cfg.Quiet {
		bar, _ = pterm.DefaultProgressbar.
			WithTotal(len(files)).
			WithTitle("Packing documents").
			Start()
	}

	for _, path := range files {
		rel, relErr := filepath.Rel(sourceDir, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		rel = filepath.ToSlash(rel)

		if bar != nil {
			bar.UpdateTitle(fmt.Sprintf("⚙️  Processing: %s", rel))
		}
		c.logger.Debug("processing file", zap.String("path", path))

		result := c.dispatcher.Dispatch(path)
		c.agg.Record(rel, result.Text, result.Method)

		isZip := converter.IsZip(path)
		language := ""
		if !isZip {
			language = converter.LanguageForFile(path)
		}
		if err := asm.WriteFileEntry(rel, language, result.Text, result.Method, isZip); err != nil {
			if bar != nil {
				_, _ = bar.Stop()
			}
			return fmt.Errorf("write entry %s: %w", rel, err)
		}

		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		_, _ = bar.Stop()
	}
	return nil
}

// runSingleEmail 单邮件分析报告布局
func (c *Compiler) runSingleEmail(asm *assembler.Assembler, path string) error {
	name := filepath.Base(path)
	c.printf("⚙️  Processing: %s\n", name)

	result := c.dispatcher.Dispatch(path)
	c.agg.Record(name, result.Text, result.Method)

	if err := asm.WriteSingleEmail(name, result.Method, result.Text); err != nil {
		return fmt.Errorf("write email report: %w", err)
	}
	return nil
}

func (c *Compiler) printf(format string, args ...any) {
	if c.cfg.Quiet {
		return
	}
	fmt.Fprintf(c.console, format, args...)
}
