package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig 默认配置
func TestDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "documix-output.md", cfg.OutputFile)
	assert.False(t, cfg.Recursive)
	assert.Equal(t, 10, cfg.MaxDepth)
	assert.Empty(t, cfg.ForceMode)

	assert.Contains(t, cfg.IncludeExtensions, ".pdf")
	assert.Contains(t, cfg.IncludeExtensions, ".zip")
	assert.Contains(t, cfg.IncludeExtensions, ".eml")
	assert.Contains(t, cfg.IncludeExtensions, ".rtf")
}

// TestLoadConfigMissing 配置文件缺失时回落到默认配置
func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "documix-output.md", cfg.OutputFile)
}

// TestLoadConfigExplicitMissing 显式指定的配置文件不存在时报错
func TestLoadConfigExplicitMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

// TestLoadConfigImplicitMalformed 隐式搜索到的配置解析失败时回落到默认配置
func TestLoadConfigImplicitMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".documix.yaml"), []byte("output_file: [broken\n"), 0o644))

	t.Setenv("HOME", dir)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "documix-output.md", cfg.OutputFile)
}

// TestLoadConfigFile 从 YAML 文件加载
func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documix.yaml")
	content := `output_file: packed.md
recursive: true
include_extensions:
  - TXT
  - md
force_mode: standard
max_depth: 3
tools:
  pandoc:
    disabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "packed.md", cfg.OutputFile)
	assert.True(t, cfg.Recursive)
	// 扩展名统一为小写加点
	assert.Equal(t, []string{".txt", ".md"}, cfg.IncludeExtensions)
	assert.Equal(t, "standard", cfg.ForceMode)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.True(t, cfg.Tools["pandoc"].Disabled)
}

// TestLoadConfigInvalidMode 非法 force_mode 报错
func TestLoadConfigInvalidMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("force_mode: email_collection\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "force_mode")
}

// TestNormalizeDepth 非正整数的深度回落到默认值
func TestNormalizeDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: -1\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxDepth)
}
