package converter

import (
	"go.uber.org/zap"
)

// Strategy 单个转换策略。Attempt 成功时返回提取的文本，
// 失败（工具缺失、非零退出、库调用出错）时返回 error，由链推进到下一个策略。
type Strategy interface {
	Name() string
	Attempt(path string) (string, error)
}

// Chain 按固定顺序尝试策略的转换链。
// 第一个成功的策略胜出，其名称成为结果的 method 标签；
// 全部失败时返回占位文本和 "failed"。
type Chain struct {
	kind       string // 占位文本中的格式名（PDF / DOCX / ...）
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain 创建转换链
func NewChain(kind string, logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		kind:       kind,
		strategies: strategies,
		logger:     logger,
	}
}

// Convert 依次尝试链内策略
func (c *Chain) Convert(path string) Result {
	for _, s := range c.strategies {
		text, err := s.Attempt(path)
		if err != nil {
			c.logger.Debug("strategy failed, trying next",
				zap.String("kind", c.kind),
				zap.String("strategy", s.Name()),
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		c.logger.Info("conversion succeeded",
			zap.String("kind", c.kind),
			zap.String("strategy", s.Name()),
			zap.String("path", path))
		return Result{Text: text, Method: s.Name()}
	}

	c.logger.Warn("all strategies failed",
		zap.String("kind", c.kind),
		zap.String("path", path))
	return failedConvert(c.kind, path)
}
