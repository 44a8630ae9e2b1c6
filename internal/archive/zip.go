// Package archive 展开 ZIP 容器：整包解到临时工作区，
// 对每个在处理范围内的条目递归调用调度器，汇总成一份 Markdown。
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/converter"
)

// Dispatcher 回调接口，由 converter.Dispatcher 满足
type Dispatcher interface {
	DispatchDepth(path string, depth int) converter.Result
}

// Expander ZIP 容器展开器
type Expander struct {
	ws         *converter.WorkspaceManager
	dispatcher Dispatcher
	include    map[string]bool
	logger     *zap.Logger
}

// NewExpander 创建展开器。includeExts 限定哪些内层条目会被处理。
func NewExpander(ws *converter.WorkspaceManager, dispatcher Dispatcher, includeExts []string, logger *zap.Logger) *Expander {
	include := make(map[string]bool, len(includeExts))
	for _, ext := range includeExts {
		include[strings.ToLower(ext)] = true
	}
	return &Expander{
		ws:         ws,
		dispatcher: dispatcher,
		include:    include,
		logger:     logger,
	}
}

// Expand 展开一个 ZIP 文件。单个条目的失败只影响它自己，
// 以行内错误说明呈现，其余条目照常处理。
func (e *Expander) Expand(zipPath string, depth int) converter.Result {
	dir, err := e.ws.Create("zip")
	if err != nil {
		return converter.Result{
			Text:   fmt.Sprintf("[Error processing ZIP file: %v]", err),
			Method: "failed-exception",
		}
	}

	if err := extractAll(zipPath, dir); err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return converter.Result{
				Text:   fmt.Sprintf("[Error: %s is not a valid ZIP file]", filepath.Base(zipPath)),
				Method: "failed-bad_zip",
			}
		}
		return converter.Result{
			Text:   fmt.Sprintf("[Error processing ZIP file: %v]", err),
			Method: "failed-exception",
		}
	}

	entries, err := listFiles(dir)
	if err != nil {
		return converter.Result{
			Text:   fmt.Sprintf("[Error processing ZIP file: %v]", err),
			Method: "failed-exception",
		}
	}
	sort.Strings(entries)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# ZIP Archive Contents: %s\n\n", filepath.Base(zipPath))
	sb.WriteString("## Files in archive:\n\n")
	for _, entry := range entries {
		fmt.Fprintf(&sb, "- %s\n", entry)
	}
	sb.WriteString("\n## Extracted file contents:\n\n")

	var methods []string
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry))
		if !e.include[ext] {
			continue
		}

		fmt.Fprintf(&sb, "### File: %s\n\n", entry)

		res := e.dispatchEntry(filepath.Join(dir, filepath.FromSlash(entry)), depth+1)
		methods = append(methods, res.Method)

		if lang := converter.LanguageForFile(entry); lang != "" {
			fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", lang, res.Text)
		} else {
			fmt.Fprintf(&sb, "```\n%s\n```\n\n", res.Text)
		}
	}

	method := "zip_extract+" + joinMethodSet(methods)
	e.logger.Info("zip expanded",
		zap.String("path", zipPath),
		zap.Int("entries", len(entries)),
		zap.String("method", method))

	return converter.Result{Text: sb.String(), Method: method}
}

// dispatchEntry 处理单个条目，任何意外都折叠成行内错误说明
func (e *Expander) dispatchEntry(path string, depth int) (res converter.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("zip entry processing panicked",
				zap.String("path", path),
				zap.Any("panic", r))
			res = converter.Result{
				Text:   fmt.Sprintf("[Error processing file: %v]", r),
				Method: "failed-exception",
			}
		}
	}()
	return e.dispatcher.DispatchDepth(path, depth)
}

// extractAll 把整个压缩包解到目标目录。
// 路径逃逸目标目录的条目直接跳过。
func extractAll(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dir, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", f.Name, err)
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// listFiles 枚举目录下所有文件的相对路径
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// joinMethodSet 去重后拼接内层方法集合（保留首次出现顺序，保证输出确定）
func joinMethodSet(methods []string) string {
	seen := make(map[string]bool, len(methods))
	var uniq []string
	for _, m := range methods {
		if !seen[m] {
			seen[m] = true
			uniq = append(uniq, m)
		}
	}
	return strings.Join(uniq, "+")
}
