package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ContainerExpander 容器格式（ZIP、邮件）的展开器。
// 展开器内部递归回调 Dispatcher 处理内层文件，depth 用于限制嵌套深度。
type ContainerExpander interface {
	Expand(path string, depth int) Result
}

// Dispatcher 格式调度器：按扩展名把文件路由到转换链或容器展开器。
// Dispatch 对任何输入都不报错，所有失败都收敛在返回结果的 method 标签里。
type Dispatcher struct {
	runner     *ToolRunner
	ws         *WorkspaceManager
	logger     *zap.Logger
	pdf        *Chain
	epub       *Chain
	docx       *Chain
	rtf        *Chain
	containers map[string]ContainerExpander
	maxDepth   int
}

// NewDispatcher 创建调度器
func NewDispatcher(runner *ToolRunner, ws *WorkspaceManager, maxDepth int, logger *zap.Logger) *Dispatcher {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	return &Dispatcher{
		runner:     runner,
		ws:         ws,
		logger:     logger,
		pdf:        newPDFChain(runner, logger),
		epub:       newEPUBChain(runner, logger),
		docx:       newDOCXChain(runner, logger),
		rtf:        newRTFChain(runner, logger),
		containers: make(map[string]ContainerExpander),
		maxDepth:   maxDepth,
	}
}

// RegisterContainer 注册容器展开器（".zip"、".eml"）
func (d *Dispatcher) RegisterContainer(ext string, expander ContainerExpander) {
	d.containers[strings.ToLower(ext)] = expander
}

// Runner 返回底层工具执行器
func (d *Dispatcher) Runner() *ToolRunner { return d.runner }

// Dispatch 处理一个顶层文件
func (d *Dispatcher) Dispatch(path string) Result {
	return d.DispatchDepth(path, 0)
}

// DispatchDepth 处理一个文件，depth 是当前的容器嵌套深度。
// 超过最大深度的内层文件以占位文本收场，防止 ZIP 套 ZIP、
// 邮件互相附带之类的结构导致无限递归。
func (d *Dispatcher) DispatchDepth(path string, depth int) Result {
	if depth > d.maxDepth {
		return Result{
			Text:   fmt.Sprintf("[Error: container nesting too deep for file: %s]", filepath.Base(path)),
			Method: "failed-depth",
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return d.pdf.Convert(path)
	case ".epub":
		return d.epub.Convert(path)
	case ".docx":
		return d.docx.Convert(path)
	case ".doc":
		return d.convertDoc(path)
	case ".rtf":
		return d.rtf.Convert(path)
	}

	if expander, ok := d.containers[ext]; ok {
		return expander.Expand(path, depth)
	}

	return readTextFile(path)
}

// convertDoc 桥接转换 DOC：先用 soffice 批量转换出同名 DOCX，
// 再把桥接产物送回 DOCX 链。method 记录完整的来源链。
func (d *Dispatcher) convertDoc(path string) Result {
	dir, err := d.ws.Create("doc")
	if err != nil {
		d.logger.Warn("doc bridge workspace failed", zap.String("path", path), zap.Error(err))
		return failedConvert("DOC", path)
	}

	base := filepath.Base(path)
	tmpDoc := filepath.Join(dir, base)
	if err := copyFile(path, tmpDoc); err != nil {
		d.logger.Warn("doc copy failed", zap.String("path", path), zap.Error(err))
		return failedConvert("DOC", path)
	}

	info, err := os.Stat(tmpDoc)
	if err != nil || info.Size() == 0 {
		d.logger.Warn("doc file empty or unreadable", zap.String("path", path))
		return failedConvert("DOC", path)
	}

	if err := d.runner.Run("soffice", "--convert-to", "docx", "--outdir", dir, tmpDoc); err != nil {
		d.logger.Warn("soffice conversion failed", zap.String("path", path), zap.Error(err))
		return failedConvert("DOC", path)
	}

	bridged := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".docx")
	if _, err := os.Stat(bridged); err != nil {
		d.logger.Warn("soffice did not produce expected output",
			zap.String("path", path),
			zap.String("expected", bridged))
		return failedConvert("DOC", path)
	}

	res := d.docx.Convert(bridged)
	return Result{Text: res.Text, Method: "soffice+" + res.Method}
}

// copyFile 复制文件内容，源文件只读不动
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
