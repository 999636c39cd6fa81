package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("report.pdf"))
	assert.True(t, IsPDF("REPORT.PDF"))
	assert.False(t, IsPDF("notes.txt"))
	assert.False(t, IsPDF("pdf"))
	assert.False(t, IsPDF("archive.pdf.zip"))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "abc", Prefix("abc", 10))
	assert.Equal(t, "àè", Prefix("àèì", 2))
	assert.Len(t, []rune(Prefix(strings.Repeat("x", 5000), 1000)), 1000)
	assert.Equal(t, "keep", Prefix("keep", 0))
}

func TestExtractTextRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0600))

	_, err := NewPDFExtractor().ExtractText(path)
	assert.Error(t, err)
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := NewPDFExtractor().ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
