package extract

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// decodeText 按编码阶梯解码文本内容：
// UTF-8 → UTF-16（按 BOM）→ Latin-1 → CP1252，最后有损回退到 UTF-8。
// Latin-1 对任意字节都有映射，阶梯实际在这里兜底。
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}

	if bytes.HasPrefix(content, utf16LEBOM) || bytes.HasPrefix(content, utf16BEBOM) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := decodeWith(dec, content); err == nil {
			return decoded
		}
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		if decoded, err := decodeWith(cm.NewDecoder(), content); err == nil {
			return decoded
		}
	}

	// 有损回退：丢弃非法字节序列
	return string(bytes.ToValidUTF8(content, nil))
}

func decodeWith(dec *encoding.Decoder, content []byte) (string, error) {
	out, err := dec.Bytes(content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
