package ingestion

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/export"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Go Engineer</w:t></w:r></w:p>
<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml":   documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractProfileText_PlainText(t *testing.T) {
	text, err := ExtractProfileText("profile.md", []byte("# Jane Doe\r\n\r\n\r\n\r\n•  Go   developer\n"))
	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe\n\n- Go developer", text)
}

func TestExtractProfileText_Docx(t *testing.T) {
	text, err := ExtractProfileText("Resume.DOCX", buildDocx(t))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Go Engineer\nSkills: Go & SQL", text)
}

func TestExtractProfileText_PDF(t *testing.T) {
	var buf bytes.Buffer
	_, err := export.WritePDF(&buf, "JaneDoe\nGoEngineer", export.DefaultPageConfig())
	require.NoError(t, err)

	text, err := ExtractProfileText("resume.pdf", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, text, "JaneDoe")
	assert.Contains(t, text, "GoEngineer")
}

func TestExtractProfileText_Errors(t *testing.T) {
	_, err := ExtractProfileText("resume.pages", []byte("x"))
	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".pages", unsupported.Ext)

	_, err = ExtractProfileText("noext", []byte("x"))
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), "missing extension")

	_, err = ExtractProfileText("empty.txt", []byte(" \n "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ExtractProfileText("bad.txt", []byte{0xff, 0xfe, 0x00})
	assert.Error(t, err)

	_, err = ExtractProfileText("broken.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	_, err = ExtractProfileText("broken.docx", []byte("not a zip"))
	assert.Error(t, err)
}

func TestWordprocessingText_Breaks(t *testing.T) {
	text, err := wordprocessingText(`<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>a</w:t><w:br/><w:t>b</w:t></w:r></w:p><w:p><w:r><w:t>c</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", text)
}
