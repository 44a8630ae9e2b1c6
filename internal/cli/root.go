// Package cli 定义 documix 的命令行入口。
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/compiler"
	"github.com/nerdneilsfield/go-documix/internal/config"
	"github.com/nerdneilsfield/go-documix/internal/logger"
)

var (
	// 命令行标志变量
	cfgFile     string
	outputFile  string
	recursive   bool
	extensions  string
	exclude     string
	forceMode   string
	debugMode   bool
	verboseMode bool
	quietMode   bool
	showVersion bool
	listFormats bool
	maxDepth    int
)

// logo 启动时显示的程序标识
const logo = `
 ██████╗  ██████╗  ██████╗██╗   ██╗███╗   ███╗██╗██╗  ██╗
 ██╔══██╗██╔═══██╗██╔════╝██║   ██║████╗ ████║██║╚██╗██╔╝
 ██║  ██║██║   ██║██║     ██║   ██║██╔████╔██║██║ ╚███╔╝
 ██║  ██║██║   ██║██║     ██║   ██║██║╚██╔╝██║██║ ██╔██╗
 ██████╔╝╚██████╔╝╚██████╗╚██████╔╝██║ ╚═╝ ██║██║██╔╝ ██╗
 ╚═════╝  ╚═════╝  ╚═════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═╝
`

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "documix [flags] folder",
		Short: "documix 把一个目录下的文档打包成单个 Markdown 文件",
		Long: `documix 把一个目录（或单个文件）下的文档打包成单个 Markdown 文件，
类似 Repomix，但面向文档：PDF、EPUB、DOC/DOCX、RTF、ZIP 和邮件 (.eml)
会先被转换或展开，再合并进最终产物。

转换依赖外部工具（markitdown、pdftotext、pandoc、soffice、ebook-convert、
unrtf 等），按优先级逐个尝试；全部不可用时写入失败占位文本，打包不中断。`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion || listFormats {
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
			defer func() {
				_ = log.Sync()
			}()

			if showVersion {
				fmt.Printf("DocuMix v%s (commit %s, built %s)\n", version, commit, buildDate)
				return
			}

			if listFormats {
				handleListFormats()
				return
			}

			if !quietMode {
				fmt.Print(logo + "\n")
				fmt.Printf("🔍 Analyzing folder: %s\n", args[0])
			}

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				log.Error("加载配置失败", zap.Error(err))
				os.Exit(1)
			}

			updateConfigFromFlags(cmd, cfg)

			if !quietMode && cmd.Flags().Changed("extensions") {
				fmt.Printf("📋 Included extensions: %s\n", strings.Join(cfg.IncludeExtensions, ", "))
			}
			if !quietMode && cmd.Flags().Changed("exclude") {
				fmt.Printf("🚫 Exclusion patterns: %s\n", strings.Join(cfg.ExcludePatterns, ", "))
			}

			comp := compiler.New(cfg, log, version)
			if _, err := comp.Run(args[0]); err != nil {
				log.Error("打包失败", zap.Error(err))
				os.Exit(1)
			}
		},
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewToolsCommand())

	return rootCmd
}

// addGlobalFlags 注册全局标志
func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "documix-output.md", "输出文件路径")
	rootCmd.PersistentFlags().BoolVarP(&recursive, "recursive", "r", false, "递归处理子目录")
	rootCmd.PersistentFlags().StringVarP(&extensions, "extensions", "e", "", "要处理的扩展名列表（逗号分隔）")
	rootCmd.PersistentFlags().StringVarP(&exclude, "exclude", "x", "", "文件排除模式（正则表达式，逗号分隔）")
	rootCmd.PersistentFlags().StringVar(&forceMode, "force-mode", "", "强制输出模式 (standard / single_email)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "容器嵌套的最大递归深度")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "静默模式，不输出进度信息")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "show-version", false, "显示程序版本")
	rootCmd.PersistentFlags().BoolVar(&listFormats, "list-formats", false, "列出支持的文件格式")
}

// updateConfigFromFlags 使用命令行参数更新配置
func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output") {
		cfg.OutputFile = outputFile
	}
	if cmd.Flags().Changed("recursive") {
		cfg.Recursive = recursive
	}
	if cmd.Flags().Changed("extensions") {
		var exts []string
		for _, ext := range strings.Split(extensions, ",") {
			ext = strings.TrimSpace(strings.ToLower(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		cfg.IncludeExtensions = exts
	}
	if cmd.Flags().Changed("exclude") {
		var patterns []string
		for _, pattern := range strings.Split(exclude, ",") {
			pattern = strings.TrimSpace(pattern)
			if pattern != "" {
				patterns = append(patterns, pattern)
			}
		}
		cfg.ExcludePatterns = patterns
	}
	if cmd.Flags().Changed("force-mode") {
		cfg.ForceMode = forceMode
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debugMode
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verboseMode
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = quietMode
	}
}

// handleListFormats 列出支持的格式及其转换方式
func handleListFormats() {
	fmt.Println("支持的文件格式:")
	fmt.Println("  - .pdf   (markitdown / pdftotext)")
	fmt.Println("  - .epub  (ebook-convert)")
	fmt.Println("  - .docx  (pandoc / 内置解析)")
	fmt.Println("  - .doc   (soffice 桥接到 .docx)")
	fmt.Println("  - .rtf   (pandoc / unrtf / 内置解析)")
	fmt.Println("  - .zip   (自动解包并递归处理)")
	fmt.Println("  - .eml   (邮件元数据、正文与附件)")
	fmt.Println("  - 文本类 (.txt .md .py .rb .js .html .css .json .yml .yaml 直接读取)")
}
