package converter

import (
	"fmt"
	"os"
)

// toolFileStrategy 调用外部工具，约定工具把结果写入指定的输出文件，
// 成功后读回内容。绝大多数转换工具（markitdown、pandoc、pdftotext、
// ebook-convert）都遵循 (inputPath, outputPath) 的参数形状。
type toolFileStrategy struct {
	name   string // method 标签
	tool   string // ToolRunner 中注册的工具名
	suffix string // 临时输出文件后缀
	args   func(input, output string) []string
	runner *ToolRunner
}

func (s *toolFileStrategy) Name() string { return s.name }

func (s *toolFileStrategy) Attempt(path string) (string, error) {
	if !s.runner.IsToolAvailable(s.tool) {
		return "", fmt.Errorf("%s: %w", s.tool, ErrToolUnavailable)
	}

	out, err := os.CreateTemp("", "documix-out-*"+s.suffix)
	if err != nil {
		return "", fmt.Errorf("create temp output: %w", err)
	}
	outName := out.Name()
	_ = out.Close()
	defer os.Remove(outName)

	if err := s.runner.Run(s.tool, s.args(path, outName)...); err != nil {
		return "", err
	}

	data, err := os.ReadFile(outName)
	if err != nil {
		return "", fmt.Errorf("read tool output: %w", err)
	}

	return decodePermissive(data), nil
}

// toolStdoutStrategy 调用把结果写到标准输出的外部工具（如 unrtf）
type toolStdoutStrategy struct {
	name   string
	tool   string
	args   func(input string) []string
	runner *ToolRunner
}

func (s *toolStdoutStrategy) Name() string { return s.name }

func (s *toolStdoutStrategy) Attempt(path string) (string, error) {
	if !s.runner.IsToolAvailable(s.tool) {
		return "", fmt.Errorf("%s: %w", s.tool, ErrToolUnavailable)
	}

	output, err := s.runner.RunCapture(s.tool, s.args(path)...)
	if err != nil {
		return "", err
	}

	return decodePermissive([]byte(output)), nil
}
