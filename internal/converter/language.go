package converter

import (
	"path/filepath"
	"strings"
)

// languageByExt 扩展名到代码块语言标签的映射
var languageByExt = map[string]string{
	".py":    "python",
	".rb":    "ruby",
	".js":    "javascript",
	".html":  "html",
	".css":   "css",
	".json":  "json",
	".yml":   "yaml",
	".yaml":  "yaml",
	".md":    "markdown",
	".txt":   "text",
	".sh":    "bash",
	".java":  "java",
	".c":     "c",
	".cpp":   "cpp",
	".h":     "c",
	".php":   "php",
	".sql":   "sql",
	".xml":   "xml",
	".go":    "go",
	".rs":    "rust",
	".ts":    "typescript",
	".swift": "swift",
	".kt":    "kotlin",
	".dart":  "dart",
	".pl":    "perl",
	".r":     "r",
	".lua":   "lua",
	".scala": "scala",
	".cs":    "csharp",
	".vb":    "vb",
}

// LanguageForFile 根据扩展名返回代码块语言标签，未知时返回空串
func LanguageForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return languageByExt[ext]
}

// IsZip 判断是否为 ZIP 容器（按扩展名）
func IsZip(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".zip"
}
