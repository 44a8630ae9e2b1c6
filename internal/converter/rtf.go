package converter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// newRTFChain 构造 RTF 转换链：pandoc → unrtf → 进程内控制字剥离
func newRTFChain(runner *ToolRunner, logger *zap.Logger) *Chain {
	return NewChain("RTF", logger,
		&toolFileStrategy{
			name:   "pandoc",
			tool:   "pandoc",
			suffix: ".md",
			args: func(input, output string) []string {
				return []string{"-f", "rtf", "-t", "markdown", input, "-o", output}
			},
			runner: runner,
		},
		&toolStdoutStrategy{
			name: "unrtf",
			tool: "unrtf",
			args: func(input string) []string {
				return []string{"--text", input}
			},
			runner: runner,
		},
		&rtfStripStrategy{},
	)
}

// rtfStripStrategy 进程内 RTF 文本剥离，最后的兜底策略
type rtfStripStrategy struct{}

func (s *rtfStripStrategy) Name() string { return "rtf_text" }

func (s *rtfStripStrategy) Attempt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read rtf: %w", err)
	}
	if !strings.HasPrefix(string(data), `{\rtf`) {
		return "", fmt.Errorf("not an RTF document: %s", path)
	}
	// \'hh 转义出来的字节多半是 Latin-1，统一宽容解码
	return decodePermissive([]byte(stripRTF(data))), nil
}

// skipGroups 内容不属于正文的 RTF 组
var skipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"pict":       true,
	"header":     true,
	"footer":     true,
}

// stripRTF 解析 RTF 字节流，丢弃控制结构，保留正文文本。
// 处理 \par / \tab / \line 映射和 \'hh 十六进制转义，
// 遇到字体表等元数据组时跳过整组。
func stripRTF(data []byte) string {
	var sb strings.Builder
	i := 0
	n := len(data)
	skipDepth := 0
	depth := 0

	for i < n {
		c := data[i]
		switch c {
		case '{':
			depth++
			i++
		case '}':
			if skipDepth > 0 && depth == skipDepth {
				skipDepth = 0
			}
			depth--
			i++
		case '\\':
			i++
			if i >= n {
				break
			}
			switch data[i] {
			case '\\', '{', '}':
				if skipDepth == 0 {
					sb.WriteByte(data[i])
				}
				i++
			case '\'':
				// 十六进制转义 \'hh
				if i+2 < n {
					if v, err := strconv.ParseUint(string(data[i+1:i+3]), 16, 8); err == nil && skipDepth == 0 {
						sb.WriteByte(byte(v))
					}
					i += 3
				} else {
					i = n
				}
			default:
				word, rest := readControlWord(data[i:])
				i += rest
				if skipDepth == 0 {
					if skipGroups[word] {
						skipDepth = depth
						continue
					}
					switch word {
					case "par", "line":
						sb.WriteByte('\n')
					case "tab":
						sb.WriteByte('\t')
					}
				}
			}
		case '\r', '\n':
			i++
		default:
			if skipDepth == 0 {
				sb.WriteByte(c)
			}
			i++
		}
	}

	return strings.TrimSpace(sb.String())
}

// readControlWord 读取一个控制字（字母序列 + 可选数字参数），
// 返回控制字本身和消费的字节数（含可选的结尾空格）。
func readControlWord(data []byte) (string, int) {
	i := 0
	for i < len(data) && isASCIILetter(data[i]) {
		i++
	}
	word := string(data[:i])
	// 可选的数字参数
	if i < len(data) && (data[i] == '-' || isASCIIDigit(data[i])) {
		i++
		for i < len(data) && isASCIIDigit(data[i]) {
			i++
		}
	}
	// 控制字结尾的单个空格属于控制字
	if i < len(data) && data[i] == ' ' {
		i++
	}
	return word, i
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
