package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadTextFile 普通文本直接读取
func TestReadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello 世界"), 0o644))

	result := readTextFile(path)
	assert.Equal(t, "hello 世界", result.Text)
	assert.Equal(t, "direct_read", result.Method)
}

// TestReadTextFileMissing 读取失败时返回占位文本
func TestReadTextFileMissing(t *testing.T) {
	result := readTextFile("/nonexistent/missing.txt")
	assert.Equal(t, "failed", result.Method)
	assert.Contains(t, result.Text, "[Failed to read file: missing.txt]")
}

// TestDecodePermissive 非 UTF-8 内容按 Latin-1 兜底解码
func TestDecodePermissive(t *testing.T) {
	// 合法 UTF-8 原样返回
	assert.Equal(t, "héllo", decodePermissive([]byte("héllo")))

	// Latin-1 编码的 é (0xE9)
	decoded := decodePermissive([]byte{'h', 0xE9, 'l', 'l', 'o'})
	assert.Equal(t, "héllo", decoded)
}

// TestLanguageForFile 扩展名到语言标签
func TestLanguageForFile(t *testing.T) {
	assert.Equal(t, "python", LanguageForFile("script.py"))
	assert.Equal(t, "javascript", LanguageForFile("app.JS"))
	assert.Equal(t, "", LanguageForFile("binary.bin"))
}

// TestIsZip ZIP 判定
func TestIsZip(t *testing.T) {
	assert.True(t, IsZip("archive.zip"))
	assert.True(t, IsZip("ARCHIVE.ZIP"))
	assert.False(t, IsZip("doc.pdf"))
}
