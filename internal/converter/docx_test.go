package converter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMinimalDocx 构造只含 word/document.xml 的最小 DOCX
func writeMinimalDocx(t *testing.T, path, documentXML string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

// TestDocxExtract 内置 DOCX 解析提取段落文本
func TestDocxExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	writeMinimalDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	s := &docxExtractStrategy{}
	text, err := s.Attempt(path)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
	// 段落之间以空行分隔
	assert.Contains(t, text, "First paragraph.\n\n")
}

// TestDocxExtractTabsAndBreaks 制表符与换行标记
func TestDocxExtractTabsAndBreaks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabs.docx")
	writeMinimalDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	s := &docxExtractStrategy{}
	text, err := s.Attempt(path)
	require.NoError(t, err)
	assert.Contains(t, text, "a\tb\nc")
}

// TestDocxExtractEmptyOutput 空文档视为失败，让链继续
func TestDocxExtractEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	writeMinimalDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body></w:body>
</w:document>`)

	s := &docxExtractStrategy{}
	_, err := s.Attempt(path)
	assert.Error(t, err)
}

// TestDocxExtractNotZip 非 ZIP 输入报错
func TestDocxExtractNotZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	s := &docxExtractStrategy{}
	_, err := s.Attempt(path)
	assert.Error(t, err)
}
