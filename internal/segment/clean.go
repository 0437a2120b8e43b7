package segment

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	inlineSpace   = regexp.MustCompile(`[ \t\f\v]+`)
	manyBreaks    = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
	gluedSentence = regexp.MustCompile(`(\p{Ll}{2,})\.(\p{Lu})`)
)

// Clean repairs common extraction artifacts: control characters, runs of
// inline whitespace, stacked blank lines and sentences glued together
// ("end.Next"). Paragraph breaks are preserved.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	text = inlineSpace.ReplaceAllString(text, " ")
	text = manyBreaks.ReplaceAllString(text, "\n\n")
	text = gluedSentence.ReplaceAllString(text, "$1. $2")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
