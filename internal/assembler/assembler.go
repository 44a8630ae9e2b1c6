// Package assembler 负责把转换结果装配成最终的 Markdown 产物。
// 标准布局产出 Repomix 风格的合并文档；单邮件布局产出邮件分析报告。
package assembler

import (
	"fmt"
	"io"
	"time"
)

// fence 使用四个反引号以兼容 Repomix 格式
const fence = "````"

// Assembler Markdown 装配器
type Assembler struct {
	out io.Writer
}

// New 创建装配器，写入给定输出
func New(out io.Writer) *Assembler {
	return &Assembler{out: out}
}

// WriteStandardHeader 写入标准布局的文件头、摘要、目录信息与目录结构
func (a *Assembler) WriteStandardHeader(sourceDir string, totalFiles int, structure []string) error {
	var b []byte

	b = append(b, "This file is a merged representation of all documents, combined into a single document.\n\n"...)

	b = append(b, "# File Summary\n\n"...)
	b = append(b, "## Purpose\n"...)
	b = append(b, "This file contains a packed representation of the entire directory's contents.\n"...)
	b = append(b, "It is designed to be easily consumable by AI systems for analysis, review,\n"...)
	b = append(b, "or other automated processes.\n\n"...)

	b = append(b, "## File Format\n"...)
	b = append(b, "The content is organized as follows:\n"...)
	b = append(b, "1. This summary section\n"...)
	b = append(b, "2. Directory information\n"...)
	b = append(b, "3. Directory structure\n"...)
	b = append(b, "4. Multiple file entries, each consisting of:\n"...)
	b = append(b, "  a. A header with the file path (## File: path/to/file)\n"...)
	b = append(b, "  b. The full contents of the file in a code block\n\n"...)

	b = append(b, "## Usage Guidelines\n"...)
	b = append(b, "- This file should be treated as read-only. Any changes should be made to the\n"...)
	b = append(b, "  original files, not this packed version.\n"...)
	b = append(b, "- When processing this file, use the file path to distinguish\n"...)
	b = append(b, "  between different files in the directory.\n\n"...)

	b = append(b, "## Notes\n"...)
	b = append(b, "- Some files may have been excluded based on extension filters or exclusion patterns\n"...)
	b = append(b, "- Binary files are only partially supported (PDF, EPUB, DOCX) and conversion quality may vary\n"...)
	b = append(b, "- ZIP files are automatically extracted and their contents are included\n"...)
	b = append(b, "- Files matching specified exclude patterns are skipped\n\n"...)

	b = append(b, "# Directory Information\n"...)
	b = append(b, fmt.Sprintf("- Source Directory: %s\n", sourceDir)...)
	b = append(b, fmt.Sprintf("- Compilation Date: %s\n", time.Now().Format("2006-01-02 15:04:05"))...)
	b = append(b, fmt.Sprintf("- Total Files Processed: %d\n\n", totalFiles)...)

	b = append(b, "# Directory Structure\n"...)
	b = append(b, "```\n"...)
	for _, item := range structure {
		b = append(b, item...)
		b = append(b, '\n')
	}
	b = append(b, "```\n\n"...)

	b = append(b, "# Files\n\n"...)

	_, err := a.out.Write(b)
	return err
}

// WriteFileEntry 写入单个文件条目。ZIP 展开结果本身已是 Markdown，
// 直接嵌入；其余内容用带语言标签的围栏代码块包裹。
func (a *Assembler) WriteFileEntry(relPath, language, content, method string, raw bool) error {
	if _, err := fmt.Fprintf(a.out, "## File: %s (converted with %s)\n", relPath, method); err != nil {
		return err
	}

	if raw {
		_, err := io.WriteString(a.out, content)
		return err
	}

	if language != "" {
		if _, err := fmt.Fprintf(a.out, "%s%s\n", fence, language); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(a.out, "%s\n", fence); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(a.out, content); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "\n%s\n\n", fence)
	return err
}

// WriteSingleEmail 写入单邮件分析报告布局。
// body 是邮件处理器编译出的完整 Markdown 文档。
func (a *Assembler) WriteSingleEmail(fileName, method, body string) error {
	var b []byte

	b = append(b, "# Email Analysis Report\n\n"...)
	b = append(b, "Processing mode: Single Email\n\n"...)

	b = append(b, "## Email Summary\n\n"...)
	b = append(b, fmt.Sprintf("- Source File: %s\n", fileName)...)
	b = append(b, fmt.Sprintf("- Compilation Date: %s\n", time.Now().Format("2006-01-02 15:04:05"))...)
	b = append(b, fmt.Sprintf("- Conversion Method: %s\n\n", method)...)

	b = append(b, "## Email Details\n\n"...)
	b = append(b, "### Message Information\n\n"...)

	if _, err := a.out.Write(b); err != nil {
		return err
	}
	if _, err := io.WriteString(a.out, body); err != nil {
		return err
	}
	_, err := io.WriteString(a.out, "\n")
	return err
}
