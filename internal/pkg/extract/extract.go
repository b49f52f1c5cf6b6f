// Package extract 从上传的文档中提取纯文本。
// 支持 PDF、DOCX 以及各种纯文本/代码文件格式。
package extract

import (
	"bytes"
	"strings"

	errs "github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// textMIMEs 直接按文本处理的 MIME 类型。
var textMIMEs = map[string]bool{
	"text/plain":             true,
	"text/markdown":          true,
	"text/html":              true,
	"text/css":               true,
	"text/csv":               true,
	"text/xml":               true,
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"text/javascript":        true,
}

// textExtensions 直接按文本处理的文件扩展名。
var textExtensions = []string{
	".txt", ".md", ".py", ".js", ".go", ".json", ".csv",
	".xml", ".html", ".css", ".yml", ".yaml",
}

// Extract 根据 MIME 类型和文件名提取文档文本。
// 无法识别的格式按文本解码处理。
func Extract(filename, mimeType string, content []byte) (string, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return "", errs.ErrDocEmpty
	}

	lower := strings.ToLower(filename)

	switch {
	case mimeType == mimePDF || strings.HasSuffix(lower, ".pdf"):
		return extractPDF(content)

	case mimeType == mimeDOCX || strings.HasSuffix(lower, ".docx"):
		return extractDOCX(content)

	case mimeType == mimeDOC || strings.HasSuffix(lower, ".doc"):
		// 旧版 .doc 是 OLE 二进制格式，不做降级解析
		return "", errs.ErrDocUnsupportedFormat.WithMessage(
			"legacy .doc format is not supported, convert to .docx or .pdf")
	}

	if textMIMEs[mimeType] || hasTextExtension(lower) {
		return decodeText(content), nil
	}

	// 未知格式：尝试按文本解码
	return decodeText(content), nil
}

func hasTextExtension(filename string) bool {
	for _, ext := range textExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
