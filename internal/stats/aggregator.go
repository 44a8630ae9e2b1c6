// Package stats 累积每个顶层文件的字符 / 词元统计，供最终汇总展示。
package stats

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// FileStat 单个文件的统计记录
type FileStat struct {
	Path       string `json:"path"`
	CharCount  int    `json:"char_count"`
	TokenCount int    `json:"token_count"`
	Method     string `json:"method"`
}

// Aggregator 统计聚合器
type Aggregator struct {
	totalFiles  int
	totalChars  int
	totalTokens int
	files       []FileStat
}

// NewAggregator 创建聚合器
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// EstimateTokens 粗略的词元估算：取修剪后的空白分词数，
// 文本以 . ! ? 结尾时额外加一。这是刻意保留的简化口径，
// 不是真正的分词器，必须与历史输出保持一致。
func EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	count := len(strings.Fields(trimmed))
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		count++
	}
	return count
}

// Record 记录一个顶层文件的处理结果
func (a *Aggregator) Record(path, text, method string) FileStat {
	// 字符数按码点计，多字节文本的统计口径不随编码长度漂移
	stat := FileStat{
		Path:       path,
		CharCount:  utf8.RuneCountInString(text),
		TokenCount: EstimateTokens(text),
		Method:     method,
	}

	a.totalFiles++
	a.totalChars += stat.CharCount
	a.totalTokens += stat.TokenCount
	a.files = append(a.files, stat)

	return stat
}

// Totals 返回累计文件数、字符数、词元数
func (a *Aggregator) Totals() (files, chars, tokens int) {
	return a.totalFiles, a.totalChars, a.totalTokens
}

// Top 返回按字符数降序排列的前 n 条记录
func (a *Aggregator) Top(n int) []FileStat {
	sorted := make([]FileStat, len(a.files))
	copy(sorted, a.files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CharCount > sorted[j].CharCount
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// All 返回全部记录（按记录顺序）
func (a *Aggregator) All() []FileStat {
	out := make([]FileStat, len(a.files))
	copy(out, a.files)
	return out
}
