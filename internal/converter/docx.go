package converter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// newDOCXChain 构造 DOCX 转换链：pandoc → 进程内 XML 提取。
// 进程内提取只用来救 pandoc 彻底失败的场景，
// 所以它是链中唯一对空输出显式报错的策略。
func newDOCXChain(runner *ToolRunner, logger *zap.Logger) *Chain {
	return NewChain("DOCX", logger,
		&toolFileStrategy{
			name:   "pandoc",
			tool:   "pandoc",
			suffix: ".md",
			args: func(input, output string) []string {
				return []string{"-f", "docx", "-t", "markdown", input, "-o", output}
			},
			runner: runner,
		},
		&docxExtractStrategy{},
	)
}

// docxExtractStrategy 进程内 DOCX 文本提取：
// 解开 zip 包，遍历 word/document.xml 中的 w:t / w:tab / w:br 节点。
type docxExtractStrategy struct{}

func (s *docxExtractStrategy) Name() string { return "docx_extract" }

func (s *docxExtractStrategy) Attempt(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx as zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open word/document.xml: %w", err)
		}
		defer rc.Close()

		text, err := extractWordXML(rc)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("docx extraction produced empty output")
		}
		return text, nil
	}

	return "", fmt.Errorf("word/document.xml not found in %s", path)
}

// extractWordXML 流式遍历 WordprocessingML，拼接文本节点。
// 制表符和换行元素分别映射为 \t 和 \n，段落结束补空行。
func extractWordXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}
