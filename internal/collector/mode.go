package collector

import (
	"path/filepath"
	"strings"
)

// Mode 输出布局模式
type Mode string

const (
	// ModeStandard 标准合并文档布局
	ModeStandard Mode = "standard"
	// ModeSingleEmail 单封邮件的分析报告布局
	ModeSingleEmail Mode = "single_email"
)

// DetectMode 判定输出模式。显式强制的模式无条件生效；
// 否则仅当过滤后的输入恰好是一个 .eml 文件时选择 single_email，
// 其余输入形态（多文件、单个非邮件文件）一律 standard。
// 模式只影响装配布局，不影响转换行为。
func DetectMode(files []string, forced Mode) Mode {
	if forced != "" {
		return forced
	}

	if len(files) == 1 && strings.ToLower(filepath.Ext(files[0])) == ".eml" {
		return ModeSingleEmail
	}
	return ModeStandard
}
