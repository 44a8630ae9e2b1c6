// Package converter 实现文档转换的核心调度逻辑：
// 按扩展名把文件路由到对应的转换链，链内按固定顺序尝试策略，
// 全部失败时以占位文本 + "failed" 方法标签收场，绝不向上抛出错误。
package converter

import (
	"fmt"
	"path/filepath"
)

// Result 单个文件的转换结果
type Result struct {
	Text   string // 转换得到的文本，失败时为带括号的占位说明
	Method string // 来源标签，记录最终成功（或失败）的转换策略，永不为空
}

// failedConvert 构造某一格式转换失败的占位结果
func failedConvert(kind, path string) Result {
	return Result{
		Text:   fmt.Sprintf("[Failed to convert %s file: %s]", kind, filepath.Base(path)),
		Method: "failed",
	}
}

// failedRead 构造直接读取失败的占位结果
func failedRead(path string) Result {
	return Result{
		Text:   fmt.Sprintf("[Failed to read file: %s]", filepath.Base(path)),
		Method: "failed",
	}
}
