package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return r.NumPage()
}

func TestWritePDF_ShortText(t *testing.T) {
	var buf bytes.Buffer
	layout, err := WritePDF(&buf, "Jane Doe\n\nGo engineer", DefaultPageConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, layout.PageCount())
	assert.Equal(t, []string{"Jane Doe", " ", "Go engineer"}, layout.Pages[0])
	assert.Equal(t, 1, pageCount(t, buf.Bytes()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDF_LongLineSpansPages(t *testing.T) {
	line := strings.Repeat("tailored ", 2000)

	var buf bytes.Buffer
	layout, err := WritePDF(&buf, line, DefaultPageConfig())
	require.NoError(t, err)

	assert.Greater(t, layout.PageCount(), 1)
	assert.Equal(t, layout.PageCount(), pageCount(t, buf.Bytes()))
	assert.LessOrEqual(t, layout.MaxLineWidth, layout.UsableWidth)
	assert.Greater(t, layout.MaxLineWidth, 0.0)
}

func TestWritePDF_LongWordIsSplit(t *testing.T) {
	word := strings.Repeat("x", 500)

	var buf bytes.Buffer
	layout, err := WritePDF(&buf, word, DefaultPageConfig())
	require.NoError(t, err)

	// Courier 10pt is 6pt per glyph; A4 minus 2x40pt leaves 85 glyphs.
	lines := layout.Pages[0]
	require.Len(t, lines, 6)
	assert.Len(t, lines[0], 85)
	assert.Equal(t, word, strings.Join(lines, ""))
	assert.LessOrEqual(t, layout.MaxLineWidth, layout.UsableWidth)
}

func TestWritePDF_PageBreakOnOverflow(t *testing.T) {
	cfg := DefaultPageConfig()
	// 841.89 - 80 = 761.89 usable; 54 lines of 14pt fit.
	text := strings.TrimSuffix(strings.Repeat("line\n", 55), "\n")

	var buf bytes.Buffer
	layout, err := WritePDF(&buf, text, cfg)
	require.NoError(t, err)

	require.Equal(t, 2, layout.PageCount())
	assert.Len(t, layout.Pages[0], 54)
	assert.Len(t, layout.Pages[1], 1)
	assert.Equal(t, 2, pageCount(t, buf.Bytes()))
}

func TestWritePDF_EmptyTextHasOnePage(t *testing.T) {
	var buf bytes.Buffer
	layout, err := WritePDF(&buf, "", DefaultPageConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, layout.PageCount())
	assert.Equal(t, 1, pageCount(t, buf.Bytes()))
}

func TestWritePDF_InvalidConfig(t *testing.T) {
	cfg := DefaultPageConfig()
	cfg.LineHeight = 5

	_, err := WritePDF(&bytes.Buffer{}, "x", cfg)
	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, "pdf", exportErr.Op)
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	layout, err := SaveFile(path, "hello", DefaultPageConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, layout.PageCount())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(t, data))
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", DefaultFilename},
		{"resume", "resume.pdf"},
		{"resume.pdf", "resume.pdf"},
		{"../../etc/passwd", "passwd.pdf"},
		{`C:\Users\me\cv.pdf`, "cv.pdf"},
		{"Jane Doe – Acme.pdf", "Jane-Doe-Acme.pdf"},
		{"...", DefaultFilename},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in, ".pdf", DefaultFilename))
		})
	}
}
