package converter

import "go.uber.org/zap"

// newEPUBChain 构造 EPUB 转换链：只有 ebook-convert 一个策略，没有回退
func newEPUBChain(runner *ToolRunner, logger *zap.Logger) *Chain {
	return NewChain("EPUB", logger,
		&toolFileStrategy{
			name:   "ebook-convert",
			tool:   "ebook-convert",
			suffix: ".txt",
			args: func(input, output string) []string {
				return []string{input, output}
			},
			runner: runner,
		},
	)
}
