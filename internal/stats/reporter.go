package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Reporter 把统计结果渲染到控制台
type Reporter struct {
	out io.Writer
}

// NewReporter 创建报告渲染器
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// ShowTopFiles 渲染字符数前 5 的文件列表
func (r *Reporter) ShowTopFiles(agg *Aggregator) {
	title := color.New(color.FgCyan, color.Bold)
	_, _ = title.Fprintln(r.out, "\n📈 Top 5 Files by Character Count and Token Count:")
	fmt.Fprintln(r.out, strings.Repeat("─", 50))

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.AppendHeader(table.Row{"#", "File", "Chars", "Tokens", "Method"})
	for i, stat := range agg.Top(5) {
		t.AppendRow(table.Row{i + 1, stat.Path, stat.CharCount, stat.TokenCount, stat.Method})
	}
	t.Render()
}

// ShowSecurity 渲染安全检查结果
func (r *Reporter) ShowSecurity(suspicious []string) {
	title := color.New(color.FgYellow, color.Bold)
	_, _ = title.Fprintln(r.out, "\n🔎 Security Check:")
	fmt.Fprintln(r.out, strings.Repeat("─", 21))

	if len(suspicious) == 0 {
		fmt.Fprintln(r.out, "✔ No suspicious files detected.")
		return
	}

	fmt.Fprintln(r.out, "❌ Suspicious files detected:")
	for _, path := range suspicious {
		fmt.Fprintf(r.out, "  - %s\n", path)
	}
}

// ShowSummary 渲染打包汇总
func (r *Reporter) ShowSummary(agg *Aggregator, outputPath string, elapsed time.Duration) {
	files, chars, tokens := agg.Totals()

	title := color.New(color.FgGreen, color.Bold)
	_, _ = title.Fprintln(r.out, "\n📊 Pack Summary:")
	fmt.Fprintln(r.out, strings.Repeat("─", 21))
	fmt.Fprintf(r.out, "  Total Files: %d files\n", files)
	fmt.Fprintf(r.out, "  Total Chars: %d chars\n", chars)
	fmt.Fprintf(r.out, " Total Tokens: %d tokens\n", tokens)
	fmt.Fprintf(r.out, "       Output: %s\n", outputPath)
	fmt.Fprintf(r.out, "         Time: %.2f seconds\n", elapsed.Seconds())
}
