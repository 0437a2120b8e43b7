// Package loader reads plain-text documents from disk.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"docinsight/internal/domain"
	"docinsight/internal/segment"
)

// Extensions lists the file types Load accepts.
var Extensions = []string{".txt", ".md", ".text"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads path, decodes it and repairs extraction artifacts. The returned
// document has no ID; sessions assign one.
func Load(path string) (domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return domain.Document{}, fmt.Errorf("unsupported file type %q (want one of %s): %w",
			ext, strings.Join(Extensions, ", "), domain.ErrInvalidInput)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := Decode(raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return domain.Document{Name: filepath.Base(path), Text: segment.Clean(text)}, nil
}

// Decode returns raw as UTF-8, falling back to Latin-1 for invalid UTF-8 input.
func Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var (
	extension = regexp.MustCompile(`\.[^.]*$`)
	separator = regexp.MustCompile(`[_-]`)
)

// DisplayName turns a file name like "annual_report-2023.txt" into "Annual Report 2023".
func DisplayName(filename string) string {
	name := extension.ReplaceAllString(filepath.Base(filename), "")
	name = separator.ReplaceAllString(name, " ")
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func supported(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
