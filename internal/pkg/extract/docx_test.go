package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/chopper-ai/chopper-docs/pkg/utils/errors"
)

// buildDOCX 构造只包含 word/document.xml 的最小 DOCX 压缩包。
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxFooter = `</w:body></w:document>`

func TestExtractDOCXParagraphs(t *testing.T) {
	doc := buildDOCX(t, docxHeader+
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t></w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`+
		docxFooter)

	text, err := extractDOCX(doc)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", text)
}

func TestExtractDOCXTable(t *testing.T) {
	doc := buildDOCX(t, docxHeader+
		`<w:p><w:r><w:t>Intro text.</w:t></w:r></w:p>`+
		`<w:tbl>`+
		`<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Age</w:t></w:r></w:p></w:tc></w:tr>`+
		`<w:tr><w:tc><w:p><w:r><w:t>Alice</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>30</w:t></w:r></w:p></w:tc></w:tr>`+
		`</w:tbl>`+
		docxFooter)

	text, err := extractDOCX(doc)
	require.NoError(t, err)
	assert.Equal(t, "Intro text.\n\n[Table]\nName | Age\nAlice | 30", text)
}

func TestExtractDOCXTableSkipsEmptyCells(t *testing.T) {
	doc := buildDOCX(t, docxHeader+
		`<w:tbl>`+
		`<w:tr><w:tc><w:p><w:r><w:t>Only</w:t></w:r></w:p></w:tc><w:tc><w:p></w:p></w:tc></w:tr>`+
		`<w:tr><w:tc><w:p></w:p></w:tc><w:tc><w:p></w:p></w:tc></w:tr>`+
		`</w:tbl>`+
		docxFooter)

	text, err := extractDOCX(doc)
	require.NoError(t, err)
	assert.Equal(t, "[Table]\nOnly", text)
}

func TestExtractDOCXTableParagraphsNotInBody(t *testing.T) {
	// 表格内的段落不应重复出现在正文段落里
	doc := buildDOCX(t, docxHeader+
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
		docxFooter)

	text, err := extractDOCX(doc)
	require.NoError(t, err)
	assert.Equal(t, "[Table]\ncell text", text)
}

func TestExtractDOCXEmptyDocument(t *testing.T) {
	doc := buildDOCX(t, docxHeader+`<w:p></w:p>`+docxFooter)

	_, err := extractDOCX(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDocNoExtractableText))
}

func TestExtractDOCXNotAZip(t *testing.T) {
	_, err := extractDOCX([]byte("plain bytes, not a zip archive"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDocExtractionFailed))
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<x/>"))
	require.NoError(t, zw.Close())

	_, err = extractDOCX(buf.Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrDocExtractionFailed))
}

func TestExtractDOCXLineBreaksAndTabs(t *testing.T) {
	doc := buildDOCX(t, docxHeader+
		`<w:p><w:r><w:t>before</w:t><w:br/><w:t>after</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p>`+
		docxFooter)

	text, err := extractDOCX(doc)
	require.NoError(t, err)
	assert.Equal(t, "before\nafter\ttabbed", text)
}
