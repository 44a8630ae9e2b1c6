package converter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrToolUnavailable 表示外部工具不存在或不可执行
var ErrToolUnavailable = errors.New("external tool unavailable")

// Tool 外部转换工具信息
type Tool struct {
	Name            string            // 工具名称
	Command         string            // 执行命令
	VersionFlag     string            // 版本查询参数
	InstallCommands map[string]string // 安装命令（按操作系统）
	Description     string            // 工具描述
}

// ToolRunner 外部工具执行器，带可用性缓存。
// 缓存是实例级的，测试可以通过 RefreshToolStatus 重置。
type ToolRunner struct {
	tools        map[string]*Tool
	toolStatus   map[string]bool   // 工具可用性缓存
	toolVersions map[string]string // 工具版本缓存
	toolPaths    map[string]string // 工具路径缓存
	disabled     map[string]bool   // 配置中显式禁用的工具
	mutex        sync.RWMutex
	logger       *zap.Logger
}

// NewToolRunner 创建工具执行器并注册默认转换工具
func NewToolRunner(logger *zap.Logger) *ToolRunner {
	tr := &ToolRunner{
		tools:        make(map[string]*Tool),
		toolStatus:   make(map[string]bool),
		toolVersions: make(map[string]string),
		toolPaths:    make(map[string]string),
		disabled:     make(map[string]bool),
		logger:       logger,
	}

	tr.registerDefaultTools()

	return tr
}

// registerDefaultTools 注册默认工具
func (tr *ToolRunner) registerDefaultTools() {
	tools := []*Tool{
		{
			Name:        "uvx",
			Command:     "uvx",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":   "curl -LsSf https://astral.sh/uv/install.sh | sh",
				"darwin":  "brew install uv",
				"windows": "winget install astral-sh.uv",
			},
			Description: "uv 工具运行时，用于在隔离环境中运行 markitdown",
		},
		{
			Name:        "markitdown",
			Command:     "markitdown",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":   "pip install markitdown",
				"darwin":  "pip install markitdown",
				"windows": "pip install markitdown",
			},
			Description: "文档转 Markdown 工具，PDF 转换首选",
		},
		{
			Name:        "pdftotext",
			Command:     "pdftotext",
			VersionFlag: "-v",
			InstallCommands: map[string]string{
				"linux":  "apt install poppler-utils",
				"darwin": "brew install poppler",
			},
			Description: "保留版式的 PDF 文本提取工具（poppler-utils）",
		},
		{
			Name:        "pandoc",
			Command:     "pandoc",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":   "apt install pandoc",
				"darwin":  "brew install pandoc",
				"windows": "winget install JohnMacFarlane.Pandoc",
			},
			Description: "富文档转 Markdown 工具，DOCX/RTF 转换首选",
		},
		{
			Name:        "soffice",
			Command:     "soffice",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":  "apt install libreoffice",
				"darwin": "brew install --cask libreoffice",
			},
			Description: "LibreOffice 批量转换，DOC 桥接为 DOCX",
		},
		{
			Name:        "ebook-convert",
			Command:     "ebook-convert",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":  "apt install calibre",
				"darwin": "brew install --cask calibre",
			},
			Description: "Calibre 电子书转换工具，处理 EPUB",
		},
		{
			Name:        "unrtf",
			Command:     "unrtf",
			VersionFlag: "--version",
			InstallCommands: map[string]string{
				"linux":  "apt install unrtf",
				"darwin": "brew install unrtf",
			},
			Description: "RTF 转文本命令行工具",
		},
	}

	for _, tool := range tools {
		tr.tools[tool.Name] = tool
	}
}

// Override 应用配置中的工具覆盖（命令名替换 / 禁用）
func (tr *ToolRunner) Override(name, command string, disabled bool) {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	if tool, ok := tr.tools[name]; ok && command != "" {
		tool.Command = command
	}
	tr.disabled[name] = disabled

	// 清除缓存状态，下次检查时重新验证
	delete(tr.toolStatus, name)
	delete(tr.toolVersions, name)
	delete(tr.toolPaths, name)
}

// IsToolAvailable 检查工具是否可用（结果缓存）
func (tr *ToolRunner) IsToolAvailable(toolName string) bool {
	tr.mutex.RLock()
	if tr.disabled[toolName] {
		tr.mutex.RUnlock()
		return false
	}
	if status, exists := tr.toolStatus[toolName]; exists {
		tr.mutex.RUnlock()
		return status
	}
	tr.mutex.RUnlock()

	available := tr.checkToolAvailability(toolName)

	tr.mutex.Lock()
	tr.toolStatus[toolName] = available
	tr.mutex.Unlock()

	return available
}

// checkToolAvailability 实际检查工具可用性
func (tr *ToolRunner) checkToolAvailability(toolName string) bool {
	tr.mutex.RLock()
	tool, exists := tr.tools[toolName]
	tr.mutex.RUnlock()
	if !exists {
		return false
	}

	path, err := exec.LookPath(tool.Command)
	if err != nil {
		tr.logger.Debug("tool not found in PATH",
			zap.String("tool", toolName),
			zap.String("command", tool.Command))
		return false
	}

	tr.mutex.Lock()
	tr.toolPaths[toolName] = path
	tr.mutex.Unlock()

	// 版本探测带短超时，转换本身不设超时
	if tool.VersionFlag != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cmd := exec.CommandContext(ctx, path, tool.VersionFlag)
		output, err := cmd.CombinedOutput()
		if err != nil {
			tr.logger.Debug("tool version check failed",
				zap.String("tool", toolName),
				zap.Error(err))
			return false
		}

		version := firstLine(strings.TrimSpace(string(output)))
		tr.mutex.Lock()
		tr.toolVersions[toolName] = version
		tr.mutex.Unlock()

		tr.logger.Debug("tool available",
			zap.String("tool", toolName),
			zap.String("version", version))
	}

	return true
}

// GetToolVersion 获取工具版本
func (tr *ToolRunner) GetToolVersion(toolName string) (string, error) {
	tr.mutex.RLock()
	if version, exists := tr.toolVersions[toolName]; exists {
		tr.mutex.RUnlock()
		return version, nil
	}
	tr.mutex.RUnlock()

	if !tr.IsToolAvailable(toolName) {
		return "", fmt.Errorf("tool %s is not available", toolName)
	}

	tr.mutex.RLock()
	version := tr.toolVersions[toolName]
	tr.mutex.RUnlock()

	return version, nil
}

// GetToolPath 获取工具路径
func (tr *ToolRunner) GetToolPath(toolName string) (string, error) {
	tr.mutex.RLock()
	if path, exists := tr.toolPaths[toolName]; exists {
		tr.mutex.RUnlock()
		return path, nil
	}
	tr.mutex.RUnlock()

	if !tr.IsToolAvailable(toolName) {
		return "", fmt.Errorf("tool %s is not available: %w", toolName, ErrToolUnavailable)
	}

	tr.mutex.RLock()
	path := tr.toolPaths[toolName]
	tr.mutex.RUnlock()

	return path, nil
}

// SuggestInstallation 提供工具安装建议
func (tr *ToolRunner) SuggestInstallation(toolName string) string {
	tr.mutex.RLock()
	tool, exists := tr.tools[toolName]
	tr.mutex.RUnlock()
	if !exists {
		return fmt.Sprintf("未知工具: %s", toolName)
	}

	osName := runtime.GOOS
	installCmd, ok := tool.InstallCommands[osName]
	if !ok {
		if cmd, ok := tool.InstallCommands["linux"]; ok {
			installCmd = cmd
		} else {
			return fmt.Sprintf("暂不支持在 %s 系统上安装 %s", osName, toolName)
		}
	}

	return fmt.Sprintf("安装 %s:\n  %s\n\n%s", toolName, installCmd, tool.Description)
}

// Run 执行外部工具并等待其退出。转换调用是阻塞的且不设超时：
// 外部工具挂起会挂起整个运行，这是既有行为。
func (tr *ToolRunner) Run(toolName string, args ...string) error {
	path, err := tr.GetToolPath(toolName)
	if err != nil {
		return err
	}

	tr.logger.Debug("executing tool",
		zap.String("tool", toolName),
		zap.Strings("args", args))

	cmd := exec.Command(path, args...)
	if output, err := cmd.Output(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("tool %s exited with error: %w (stderr: %s)",
				toolName, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("tool %s execution failed: %w (output: %s)",
			toolName, err, strings.TrimSpace(string(output)))
	}

	return nil
}

// RunCapture 执行外部工具并返回其标准输出
func (tr *ToolRunner) RunCapture(toolName string, args ...string) (string, error) {
	path, err := tr.GetToolPath(toolName)
	if err != nil {
		return "", err
	}

	tr.logger.Debug("executing tool",
		zap.String("tool", toolName),
		zap.Strings("args", args))

	cmd := exec.Command(path, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("tool %s exited with error: %w (stderr: %s)",
				toolName, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tool %s execution failed: %w", toolName, err)
	}

	return string(output), nil
}

// RefreshToolStatus 刷新工具状态缓存
func (tr *ToolRunner) RefreshToolStatus() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.toolStatus = make(map[string]bool)
	tr.toolVersions = make(map[string]string)
	tr.toolPaths = make(map[string]string)
}

// GetAllTools 获取所有已注册的工具
func (tr *ToolRunner) GetAllTools() map[string]*Tool {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	result := make(map[string]*Tool, len(tr.tools))
	for name, tool := range tr.tools {
		result[name] = tool
	}

	return result
}

// firstLine 截取多行输出的第一行
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
