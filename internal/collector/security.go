package collector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dlclark/regexp2"
)

// suspiciousExtensions 需要安全提示的扩展名
var suspiciousExtensions = map[string]bool{
	".exe": true, ".bat": true, ".sh": true, ".com": true,
	".vbs": true, ".ps1": true, ".py": true, ".rb": true,
}

// suspiciousContent 粗粒度的可疑内容特征
var suspiciousContent = regexp2.MustCompile(`(exec|eval|system|subprocess|os\.)`, 0)

// SuspiciousFiles 检查文件列表中的潜在安全问题。
// 只做报告，从不阻止处理。
func SuspiciousFiles(files []string) []string {
	var suspicious []string

	for _, path := range files {
		ext := strings.ToLower(filepath.Ext(path))
		if !suspiciousExtensions[ext] {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() > 1024*1024 {
			suspicious = append(suspicious, path)
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		buf := make([]byte, 4096)
		n, _ := f.Read(buf)
		_ = f.Close()

		if matched, err := suspiciousContent.MatchString(string(buf[:n])); err == nil && matched {
			suspicious = append(suspicious, path)
		}
	}

	return suspicious
}
