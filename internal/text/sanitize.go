package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// ASCII control characters (and DEL) that have no place in stored content.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// Three or more consecutive newlines collapse to a paragraph break.
	multipleNewlinesRegex = regexp.MustCompile(`\n{3,}`)

	// Invisible or exotic Unicode characters normalized before storage.
	unicodeReplacer = strings.NewReplacer(
		"\u2060", "", // word joiner
		"\uFEFF", "", // byte order mark
		"\u00AD", "", // soft hyphen
		"\u200E", "", // left-to-right mark
		"\u200F", "", // right-to-left mark
		"\u2028", "\n", // line separator
		"\u2029", "\n\n", // paragraph separator
		"\u200B", " ", // zero width space
		"\u200C", " ", // zero width non-joiner
		"\u205F", " ", // medium mathematical space
		"\u2009", " ", // thin space
		"\u200A", " ", // hair space
		"\u202F", " ", // narrow no-break space
		"\u3000", " ", // ideographic space
		"\u00A0", " ", // non-breaking space
	)
)

// Sanitize normalizes free-form message text before it is stored: line
// endings become LF, invisible Unicode and control characters are stripped,
// runs of whitespace collapse within each line, and excessive blank lines
// collapse to a single paragraph break. An all-whitespace input yields "".
func Sanitize(input string) string {
	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = unicodeReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = collapseSpaces(lines[i])
	}

	s = strings.Join(lines, "\n")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// collapseSpaces reduces consecutive whitespace within a line to single
// spaces and trims the ends.
func collapseSpaces(line string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteRune(' ')
				inSpace = true
			}
			continue
		}
		b.WriteRune(r)
		inSpace = false
	}
	return strings.TrimSpace(b.String())
}
