package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docinsight/internal/domain"
)

func TestDecode(t *testing.T) {
	got, err := Decode([]byte("caf\xc3\xa9"))
	require.NoError(t, err)
	assert.Equal(t, "café", got)

	got, err = Decode([]byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "café", got, "invalid UTF-8 is read as Latin-1")

	got, err = Decode([]byte("\xef\xbb\xbfhello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("First  line.Second line.\r\n\r\n\r\n\r\nNext paragraph."), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Name)
	assert.Equal(t, "First line. Second line.\n\nNext paragraph.", doc.Text)
	assert.Empty(t, doc.ID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("report.pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"annual_report-2023.txt":  "Annual Report 2023",
		"/tmp/my-NOTES.md":        "My Notes",
		"plain":                   "Plain",
		"éclair_recipe.final.txt": "Éclair Recipe.final",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}
