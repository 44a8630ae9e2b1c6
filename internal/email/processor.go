// Package email 处理 .eml 邮件消息：解析 MIME 结构、解出元数据与正文、
// 解析附件来源（本地文件夹优先于 MIME 内嵌），并把附件递归送回调度器。
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-documix/internal/converter"
)

// attachmentDirNames 附件同级文件夹的候选名字，按优先级排列
var attachmentDirNames = []string{"attachments", "Attachments", "attachment", "Attachment"}

// Attachment 一个已解析的附件
type Attachment struct {
	Filename string
	Path     string
	Size     int64
}

// Processor 单封邮件的处理器
type Processor struct {
	path        string
	env         *enmime.Envelope
	metadata    map[string]string
	attachments []Attachment
	source      string // "Local folder" / "Extracted from email" / ""
	resolved    bool
	ws          *converter.WorkspaceManager
	logger      *zap.Logger
}

// NewProcessor 创建邮件处理器
func NewProcessor(path string, ws *converter.WorkspaceManager, logger *zap.Logger) *Processor {
	return &Processor{
		path:     path,
		metadata: make(map[string]string),
		ws:       ws,
		logger:   logger,
	}
}

// Parse 解码邮件并提取头部元数据。
// DKIM-Signature / Authentication-Results 只记录存在与否，不做任何密码学校验。
func (p *Processor) Parse() error {
	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open email %s: %w", p.path, err)
	}
	defer f.Close()

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return fmt.Errorf("parse email %s: %w", p.path, err)
	}
	p.env = env

	headers := map[string]string{
		"from":        "From",
		"to":          "To",
		"cc":          "Cc",
		"subject":     "Subject",
		"date":        "Date",
		"message_id":  "Message-ID",
		"in_reply_to": "In-Reply-To",
		"references":  "References",
	}
	for key, name := range headers {
		if v := strings.TrimSpace(env.GetHeader(name)); v != "" {
			p.metadata[key] = v
		}
	}

	if v := strings.TrimSpace(env.GetHeader("DKIM-Signature")); v != "" {
		p.metadata["dkim_signature"] = "present"
	}
	if v := strings.TrimSpace(env.GetHeader("Authentication-Results")); v != "" {
		p.metadata["authentication_results"] = v
	}

	return nil
}

// Metadata 返回解析出的头部元数据
func (p *Processor) Metadata() map[string]string {
	return p.metadata
}

// ResolveAttachments 解析附件来源。两条路径互斥：
// 邮件旁边存在非空的附件文件夹时直接采用其内容，
// 否则把 MIME 中 Content-Disposition 含 attachment 且带文件名的部分解到临时文件夹。
func (p *Processor) ResolveAttachments() []Attachment {
	if p.resolved {
		return p.attachments
	}
	p.resolved = true

	if atts, dir := p.folderAttachments(); len(atts) > 0 {
		p.attachments = atts
		p.source = "Local folder"
		p.logger.Debug("attachments resolved from sibling folder",
			zap.String("dir", dir),
			zap.Int("count", len(atts)))
		return p.attachments
	}

	p.attachments = p.mimeAttachments()
	if len(p.attachments) > 0 {
		p.source = "Extracted from email"
	}
	return p.attachments
}

// AttachmentsSource 返回附件来源标签
func (p *Processor) AttachmentsSource() string {
	return p.source
}

// folderAttachments 探测邮件同级的附件文件夹
func (p *Processor) folderAttachments() ([]Attachment, string) {
	for _, name := range attachmentDirNames {
		dir := filepath.Join(filepath.Dir(p.path), name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var atts []Attachment
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			atts = append(atts, Attachment{
				Filename: entry.Name(),
				Path:     filepath.Join(dir, entry.Name()),
				Size:     info.Size(),
			})
		}
		if len(atts) > 0 {
			return atts, dir
		}
	}
	return nil, ""
}

// mimeAttachments 把 MIME 附件部分写到临时文件夹
func (p *Processor) mimeAttachments() []Attachment {
	if p.env == nil || len(p.env.Attachments) == 0 {
		return nil
	}

	dir, err := p.ws.Create("eml")
	if err != nil {
		p.logger.Warn("attachment workspace failed", zap.Error(err))
		return nil
	}

	var atts []Attachment
	for _, part := range p.env.Attachments {
		if part.FileName == "" {
			continue
		}
		name := filepath.Base(part.FileName)
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, part.Content, 0o644); err != nil {
			p.logger.Warn("attachment write failed",
				zap.String("filename", name),
				zap.Error(err))
			continue
		}
		atts = append(atts, Attachment{
			Filename: name,
			Path:     target,
			Size:     int64(len(part.Content)),
		})
	}
	return atts
}

// Body 解析邮件正文：优先把 HTML 部分转成 Markdown（保留链接与图片引用），
// 没有 HTML 时回退到纯文本部分，两者皆无时返回空串。
func (p *Processor) Body() string {
	if p.env == nil {
		return ""
	}

	if strings.TrimSpace(p.env.HTML) != "" {
		md, err := htmltomarkdown.ConvertString(p.env.HTML)
		if err == nil {
			return strings.TrimSpace(md)
		}
		p.logger.Warn("html body conversion failed, falling back to plain text",
			zap.Error(err))
	}

	return strings.TrimSpace(p.env.Text)
}

// MethodTag 返回附件来源的 method 后缀
func (p *Processor) MethodTag() string {
	switch p.source {
	case "":
		return "no_attachments"
	default:
		return strings.ReplaceAll(strings.ToLower(p.source), " ", "_")
	}
}

// Compile 生成邮件的结构化 Markdown 片段并返回附件列表。
// 每个附件按自身扩展名重新进调度器；.eml 附件不再进入邮件处理
// （防止两封互相附带的邮件无限互递归），只以不支持提取的说明呈现。
func (p *Processor) Compile(dispatcher Dispatcher, depth int) (string, []Attachment) {
	atts := p.ResolveAttachments()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Email Document: %s\n\n", filepath.Base(p.path))

	sb.WriteString("## Email Metadata\n\n")
	writeMetaLine(&sb, "From", p.metadata["from"])
	writeMetaLine(&sb, "To", p.metadata["to"])
	writeMetaLine(&sb, "Cc", p.metadata["cc"])
	writeMetaLine(&sb, "Subject", p.metadata["subject"])
	writeMetaLine(&sb, "Date", p.metadata["date"])
	writeMetaLine(&sb, "Message-ID", p.metadata["message_id"])
	writeMetaLine(&sb, "In-Reply-To", p.metadata["in_reply_to"])
	writeMetaLine(&sb, "References", p.metadata["references"])
	if p.source != "" {
		writeMetaLine(&sb, "Attachments Source", p.source)
	}
	sb.WriteString("\n")

	if auth := p.authSummary(); auth != "" {
		sb.WriteString("## Authentication\n\n")
		sb.WriteString(auth)
		sb.WriteString("\n")
	}

	sb.WriteString("## Email Content\n\n")
	if body := p.Body(); body != "" {
		sb.WriteString(body)
	} else {
		sb.WriteString("*[No content]*")
	}
	sb.WriteString("\n\n")

	if len(atts) > 0 {
		fmt.Fprintf(&sb, "## Attachments (%d)\n\n", len(atts))
		for _, att := range atts {
			ext := strings.ToLower(filepath.Ext(att.Filename))
			if ext == ".eml" {
				fmt.Fprintf(&sb, "### Attachment: %s\n\n", att.Filename)
				fmt.Fprintf(&sb, "[Nested email attachment not extracted: %s]\n\n", att.Filename)
				continue
			}

			res := dispatcher.DispatchDepth(att.Path, depth+1)
			fmt.Fprintf(&sb, "### Attachment: %s (converted with %s)\n\n", att.Filename, res.Method)
			if lang := converter.LanguageForFile(att.Filename); lang != "" {
				fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", lang, res.Text)
			} else {
				fmt.Fprintf(&sb, "```\n%s\n```\n\n", res.Text)
			}
		}
	}

	return sb.String(), atts
}

// authSummary 用子串匹配从 Authentication-Results 原始头里提取
// spf= / dkim= / dmarc= 的判定结果，仅作信息展示
func (p *Processor) authSummary() string {
	raw := strings.ToLower(p.metadata["authentication_results"])
	if raw == "" {
		return ""
	}

	var sb strings.Builder
	for _, token := range []struct{ key, label string }{
		{"spf=", "SPF"},
		{"dkim=", "DKIM"},
		{"dmarc=", "DMARC"},
	} {
		if idx := strings.Index(raw, token.key); idx >= 0 {
			rest := raw[idx+len(token.key):]
			end := strings.IndexFunc(rest, func(r rune) bool {
				return r == ' ' || r == ';' || r == '\t' || r == '\n' || r == '('
			})
			if end < 0 {
				end = len(rest)
			}
			fmt.Fprintf(&sb, "- **%s**: %s\n", token.label, rest[:end])
		}
	}
	return sb.String()
}

// writeMetaLine 写一行元数据，值为空时整行省略
func writeMetaLine(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- **%s**: %s\n", label, value)
}
