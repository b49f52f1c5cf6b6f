package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	errs "github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// extractDOCX 从 DOCX 内容中提取文本。
// 先输出正文段落，再输出表格（行内单元格用 " | " 连接，带 "[Table]" 标记）。
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", errs.ErrDocExtractionFailed.WithCause(err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errs.ErrDocExtractionFailed.WithMessage("docx archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", errs.ErrDocExtractionFailed.WithCause(err)
	}
	defer rc.Close()

	paragraphs, tables, err := walkDocumentXML(rc)
	if err != nil {
		return "", errs.ErrDocExtractionFailed.WithCause(err)
	}

	var parts []string
	parts = append(parts, paragraphs...)
	for _, rows := range tables {
		if len(rows) > 0 {
			parts = append(parts, "[Table]\n"+strings.Join(rows, "\n"))
		}
	}

	result := strings.Join(parts, "\n\n")
	if strings.TrimSpace(result) == "" {
		return "", errs.ErrDocNoExtractableText.WithMessage("no text content found in DOCX document")
	}

	return result, nil
}

// walkDocumentXML 遍历 WordprocessingML，收集正文段落和表格行。
// 表格内的段落归入所在单元格，不进入正文段落列表。
func walkDocumentXML(r io.Reader) (paragraphs []string, tables [][]string, err error) {
	decoder := xml.NewDecoder(r)

	var (
		tblDepth int
		para     strings.Builder
		cell     strings.Builder
		cellHas  bool
		row      []string
		rows     []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth > 0 {
					row = row[:0]
				}
			case "tc":
				if tblDepth > 0 {
					cell.Reset()
					cellHas = false
				}
			case "p":
				if tblDepth == 0 {
					para.Reset()
				} else if cellHas {
					// 单元格内多个段落按换行连接
					cell.WriteString("\n")
				}
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return nil, nil, err
				}
				if tblDepth > 0 {
					cell.WriteString(text)
					cellHas = true
				} else {
					para.WriteString(text)
				}
			case "tab":
				if tblDepth > 0 {
					cell.WriteString("\t")
				} else {
					para.WriteString("\t")
				}
			case "br", "cr":
				if tblDepth > 0 {
					cell.WriteString("\n")
				} else {
					para.WriteString("\n")
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
					if tblDepth == 0 && len(rows) > 0 {
						tables = append(tables, append([]string(nil), rows...))
						rows = rows[:0]
					}
				}
			case "tr":
				if tblDepth > 0 {
					rowText := strings.Join(nonEmpty(row), " | ")
					if rowText != "" {
						rows = append(rows, rowText)
					}
				}
			case "tc":
				if tblDepth > 0 {
					row = append(row, strings.TrimSpace(cell.String()))
				}
			case "p":
				if tblDepth == 0 {
					if text := strings.TrimSpace(para.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}

	return paragraphs, tables, nil
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
