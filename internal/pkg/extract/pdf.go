package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	errs "github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// extractPDF 从 PDF 内容中逐页提取文本。
// 每页文本带 "[Page N]" 标记，页与页之间用空行分隔。
func extractPDF(content []byte) (text string, err error) {
	// pdf 库对损坏文件可能 panic，统一转换为提取失败
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errs.ErrDocExtractionFailed.WithCause(fmt.Errorf("pdf parse panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errs.ErrDocExtractionFailed.WithCause(err)
	}

	pageCount := reader.NumPage()
	var parts []string

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fallback := false
		pageText, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(pageText) == "" {
			// 内容流提取失败或为空时按行重试，表格类版式走这条路径
			pageText = extractPageByRows(page)
			fallback = true
		}

		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}

		parts = append(parts, pageMarker(i, fallback)+"\n"+pageText)
	}

	if len(parts) == 0 {
		// 解析成功但没有文本：多半是扫描件或纯图片 PDF
		return "", errs.ErrDocNoExtractableText.WithMessage(
			"no extractable text found in PDF, it may contain only images or scanned content")
	}

	return strings.Join(parts, "\n\n"), nil
}

// pageMarker 生成页面标记，回退路径提取的页面标记为表格内容。
func pageMarker(num int, fallback bool) string {
	if fallback {
		return fmt.Sprintf("[Page %d - Table]", num)
	}
	return fmt.Sprintf("[Page %d]", num)
}

// extractPageByRows 按行位置重组页面文本，作为内容流提取的回退。
func extractPageByRows(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}

	var lines []string
	for _, row := range rows {
		var sb strings.Builder
		for _, word := range row.Content {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(word.S)
		}
		if line := strings.TrimSpace(sb.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
