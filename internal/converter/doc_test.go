package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeStubSoffice 生成一个顶替 soffice 的脚本。
// 桥接调用的参数形状固定为 --convert-to docx --outdir <dir> <input>；
// fixture 非空时脚本把它复制成 <outdir>/<basename>.docx，否则什么都不产出。
func writeStubSoffice(t *testing.T, dir, fixture string) string {
	t.Helper()

	script := filepath.Join(dir, "soffice-stub.sh")
	var body string
	if fixture != "" {
		body = fmt.Sprintf(`#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "stub soffice 1.0"
  exit 0
fi
out="$4"
base=$(basename "$5" .doc)
cp %q "$out/$base.docx"
`, fixture)
	} else {
		body = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "stub soffice 1.0"
  exit 0
fi
exit 0
`
	}
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))
	return script
}

// TestConvertDocBridge DOC 经 soffice 桥接后方法标签记录完整来源链
func TestConvertDocBridge(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	dir := t.TempDir()
	docPath := filepath.Join(dir, "sample.doc")
	require.NoError(t, os.WriteFile(docPath, []byte("legacy doc bytes"), 0o644))

	fixture := filepath.Join(dir, "bridged.docx")
	writeMinimalDocx(t, fixture, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Bridged document content.</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	log := zap.NewNop()
	ws := NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)

	runner := NewToolRunner(log)
	runner.Override("soffice", writeStubSoffice(t, dir, fixture), false)
	// 禁用 pandoc，让 DOCX 链落到进程内解析，标签组合可预期
	runner.Override("pandoc", "", true)

	d := NewDispatcher(runner, ws, 10, log)
	result := d.Dispatch(docPath)

	assert.Equal(t, "soffice+docx_extract", result.Method)
	assert.Contains(t, result.Text, "Bridged document content.")
}

// TestConvertDocBridgeMissingOutput soffice 没产出桥接文件时收敛为失败占位
func TestConvertDocBridgeMissingOutput(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}

	dir := t.TempDir()
	docPath := filepath.Join(dir, "broken.doc")
	require.NoError(t, os.WriteFile(docPath, []byte("legacy doc bytes"), 0o644))

	log := zap.NewNop()
	ws := NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)

	runner := NewToolRunner(log)
	runner.Override("soffice", writeStubSoffice(t, dir, ""), false)

	d := NewDispatcher(runner, ws, 10, log)
	result := d.Dispatch(docPath)

	assert.Equal(t, "failed", result.Method)
	assert.Equal(t, "[Failed to convert DOC file: broken.doc]", result.Text)
}

// TestConvertDocSofficeUnavailable soffice 缺位时同样以占位文本收场
func TestConvertDocSofficeUnavailable(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "report.doc")
	require.NoError(t, os.WriteFile(docPath, []byte("legacy doc bytes"), 0o644))

	log := zap.NewNop()
	ws := NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)

	runner := NewToolRunner(log)
	runner.Override("soffice", "", true)

	d := NewDispatcher(runner, ws, 10, log)
	result := d.Dispatch(docPath)

	assert.Equal(t, "failed", result.Method)
	assert.Contains(t, result.Text, "[Failed to convert DOC file: report.doc]")
}
