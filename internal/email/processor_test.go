package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/converter"
)

const plainEmail = `From: sender@example.com
To: recipient@example.com
Cc: watcher@example.com
Subject: Quarterly Report
Date: Mon, 13 Jan 2025 10:00:00 +0000
Message-ID: <abc123@example.com>
Authentication-Results: mx.example.com; spf=pass (sender IP ok) smtp.mailfrom=example.com; dkim=pass header.d=example.com; dmarc=fail
Content-Type: text/plain; charset="utf-8"

Hello,

Please find the report attached.

Regards,
Sender
`

const htmlEmail = `From: sender@example.com
To: recipient@example.com
Subject: HTML Message
Date: Mon, 13 Jan 2025 10:00:00 +0000
Content-Type: text/html; charset="utf-8"

<html><body><p>This is a <strong>test</strong> message.</p></body></html>
`

const attachmentEmail = `From: sender@example.com
To: recipient@example.com
Subject: With Attachment
MIME-Version: 1.0
Content-Type: multipart/mixed; boundary="BOUNDARY"

--BOUNDARY
Content-Type: text/plain; charset="utf-8"

See attachment.

--BOUNDARY
Content-Type: text/plain; name="notes.txt"
Content-Disposition: attachment; filename="notes.txt"

attached notes content
--BOUNDARY--
`

// readDispatcher 测试用调度器
type readDispatcher struct{}

func (readDispatcher) DispatchDepth(path string, depth int) converter.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return converter.Result{Text: "[Failed to read file]", Method: "failed"}
	}
	return converter.Result{Text: string(data), Method: "direct_read"}
}

func writeEmail(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestProcessor(t *testing.T, path string) *Processor {
	t.Helper()
	log := zap.NewNop()
	ws := converter.NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)
	return NewProcessor(path, ws, log)
}

// TestParseMetadata 头部元数据提取
func TestParseMetadata(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "report.eml", plainEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	meta := p.Metadata()
	assert.Equal(t, "sender@example.com", meta["from"])
	assert.Equal(t, "recipient@example.com", meta["to"])
	assert.Equal(t, "watcher@example.com", meta["cc"])
	assert.Equal(t, "Quarterly Report", meta["subject"])
	assert.Equal(t, "<abc123@example.com>", meta["message_id"])
	assert.NotEmpty(t, meta["authentication_results"])
}

// TestBodyPlainText 纯文本正文
func TestBodyPlainText(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "report.eml", plainEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body := p.Body()
	assert.Contains(t, body, "Please find the report attached.")
}

// TestBodyHTMLToMarkdown HTML 正文转 Markdown
func TestBodyHTMLToMarkdown(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "html.eml", htmlEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body := p.Body()
	assert.Contains(t, body, "**test**")
}

// TestMethodTagNoAttachments 无附件时的标签
func TestMethodTagNoAttachments(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "plain.eml", plainEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	p.ResolveAttachments()
	assert.Equal(t, "no_attachments", p.MethodTag())
}

// TestMimeAttachments MIME 附件解出到临时目录
func TestMimeAttachments(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "attach.eml", attachmentEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	atts := p.ResolveAttachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "notes.txt", atts[0].Filename)
	assert.Equal(t, "Extracted from email", p.AttachmentsSource())
	assert.Equal(t, "extracted_from_email", p.MethodTag())

	data, err := os.ReadFile(atts[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "attached notes content")
}

// TestFolderAttachmentsPriority 本地附件文件夹优先于 MIME 附件
func TestFolderAttachmentsPriority(t *testing.T) {
	dir := t.TempDir()
	path := writeEmail(t, dir, "attach.eml", attachmentEmail)

	attDir := filepath.Join(dir, "attachments")
	require.NoError(t, os.MkdirAll(attDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(attDir, "local.txt"), []byte("local copy"), 0o644))

	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	atts := p.ResolveAttachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "local.txt", atts[0].Filename)
	assert.Equal(t, "Local folder", p.AttachmentsSource())
	assert.Equal(t, "local_folder", p.MethodTag())
}

// TestCompileMarkers 编译产物的结构标记
func TestCompileMarkers(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "report.eml", plainEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body, _ := p.Compile(readDispatcher{}, 0)
	assert.Contains(t, body, "# Email Document: report.eml")
	assert.Contains(t, body, "## Email Metadata")
	assert.Contains(t, body, "- **From**: sender@example.com")
	assert.Contains(t, body, "- **Subject**: Quarterly Report")
	assert.Contains(t, body, "## Email Content")
}

// TestCompileAuthSummary 认证结果的子串提取
func TestCompileAuthSummary(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "report.eml", plainEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body, _ := p.Compile(readDispatcher{}, 0)
	assert.Contains(t, body, "## Authentication")
	assert.Contains(t, body, "- **SPF**: pass")
	assert.Contains(t, body, "- **DKIM**: pass")
	assert.Contains(t, body, "- **DMARC**: fail")
}

// TestCompileAttachments 附件内容内嵌进编译产物
func TestCompileAttachments(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "attach.eml", attachmentEmail)
	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body, atts := p.Compile(readDispatcher{}, 0)
	require.Len(t, atts, 1)
	assert.Contains(t, body, "## Attachments (1)")
	assert.Contains(t, body, "### Attachment: notes.txt (converted with direct_read)")
	assert.Contains(t, body, "attached notes content")
}

// TestCompileNestedEmailGuard .eml 附件不再递归进邮件处理
func TestCompileNestedEmailGuard(t *testing.T) {
	dir := t.TempDir()
	path := writeEmail(t, dir, "outer.eml", plainEmail)

	attDir := filepath.Join(dir, "attachments")
	require.NoError(t, os.MkdirAll(attDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(attDir, "inner.eml"), []byte(plainEmail), 0o644))

	p := newTestProcessor(t, path)
	require.NoError(t, p.Parse())

	body, _ := p.Compile(readDispatcher{}, 0)
	assert.Contains(t, body, "[Nested email attachment not extracted: inner.eml]")
}

// TestExpanderFailedParse 解析失败以占位文本收场
func TestExpanderFailedParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.eml")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0xFF}, 0o644))

	log := zap.NewNop()
	ws := converter.NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)
	e := NewExpander(ws, readDispatcher{}, log)

	result := e.Expand(path, 0)
	if result.Method == "failed" {
		assert.Contains(t, result.Text, "[Failed to parse email file: garbage.eml]")
	} else {
		// enmime 对畸形输入较为宽容，能解析时必须带 email 前缀标签
		assert.Contains(t, result.Method, "email+")
	}
}

// TestExpanderMethod 正常邮件的方法标签
func TestExpanderMethod(t *testing.T) {
	path := writeEmail(t, t.TempDir(), "plain.eml", plainEmail)

	log := zap.NewNop()
	ws := converter.NewWorkspaceManager(log)
	t.Cleanup(ws.CleanupAll)
	e := NewExpander(ws, readDispatcher{}, log)

	result := e.Expand(path, 0)
	assert.Equal(t, "email+no_attachments", result.Method)
	assert.Contains(t, result.Text, "# Email Document: plain.eml")
}
