package converter

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// readTextFile 直接读取文本 / 代码 / 标记 / 配置文件。
// 解码是宽容的：非法字节序列按 Latin-1 回退解码，绝不报错。
func readTextFile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return failedRead(path)
	}
	return Result{Text: decodePermissive(data), Method: "direct_read"}
}

// decodePermissive 宽容解码：合法 UTF-8 原样返回，
// 否则按 ISO-8859-1 解码（任意字节序列都合法），最后兜底替换非法序列。
func decodePermissive(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(data), "�")
}
