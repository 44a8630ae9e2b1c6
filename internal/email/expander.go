package email

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/converter"
)

// Dispatcher 回调接口，由 converter.Dispatcher 满足
type Dispatcher interface {
	DispatchDepth(path string, depth int) converter.Result
}

// Expander 把邮件作为容器格式接入调度器
type Expander struct {
	ws         *converter.WorkspaceManager
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewExpander 创建邮件展开器
func NewExpander(ws *converter.WorkspaceManager, dispatcher Dispatcher, logger *zap.Logger) *Expander {
	return &Expander{
		ws:         ws,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Expand 处理一个 .eml 文件。解析失败以占位文本收场，不向上抛出。
func (e *Expander) Expand(path string, depth int) converter.Result {
	p := NewProcessor(path, e.ws, e.logger)
	if err := p.Parse(); err != nil {
		e.logger.Warn("email parse failed",
			zap.String("path", path),
			zap.Error(err))
		return converter.Result{
			Text:   fmt.Sprintf("[Failed to parse email file: %s]", filepath.Base(path)),
			Method: "failed",
		}
	}

	body, atts := p.Compile(e.dispatcher, depth)
	e.logger.Info("email processed",
		zap.String("path", path),
		zap.Int("attachments", len(atts)),
		zap.String("source", p.AttachmentsSource()))

	return converter.Result{
		Text:   body,
		Method: "email+" + p.MethodTag(),
	}
}
