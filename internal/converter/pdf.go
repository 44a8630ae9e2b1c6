package converter

import "go.uber.org/zap"

// newPDFChain 构造 PDF 转换链：
// uvx 沙箱运行 markitdown → 本地 markitdown → pdftotext 版式保留提取。
// uvx 运行时是否安装由 ToolRunner 的可用性缓存一次性判定，
// 避免每个 PDF 都付一次失败启动的开销。
func newPDFChain(runner *ToolRunner, logger *zap.Logger) *Chain {
	return NewChain("PDF", logger,
		&toolFileStrategy{
			name:   "uvx-markitdown",
			tool:   "uvx",
			suffix: ".md",
			args: func(input, output string) []string {
				return []string{"markitdown", input, "-o", output}
			},
			runner: runner,
		},
		&toolFileStrategy{
			name:   "markitdown",
			tool:   "markitdown",
			suffix: ".md",
			args: func(input, output string) []string {
				return []string{input, "-o", output}
			},
			runner: runner,
		},
		&toolFileStrategy{
			name:   "pdftotext",
			tool:   "pdftotext",
			suffix: ".txt",
			args: func(input, output string) []string {
				return []string{"-layout", input, output}
			},
			runner: runner,
		},
	)
}
