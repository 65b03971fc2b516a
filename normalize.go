package mdconv

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reCRLF               = regexp.MustCompile(`\r\n?`)
)

// normalizeOutput post-processes converter output exactly once, at the
// outermost dispatch:
// - Normalize line endings (CRLF -> LF)
// - Strip trailing whitespace from each line
// - Collapse 3+ consecutive newlines to 2 (at most one blank line)
// - Strip non-printable/control characters (keep \n, \t)
// - Ensure output is valid UTF-8
// A single trailing newline, when present, is preserved.
func normalizeOutput(s string) string {
	// Ensure valid UTF-8
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	// Normalize line endings
	s = reCRLF.ReplaceAllString(s, "\n")

	// Strip non-printable/control characters (keep \n, \t)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	// Strip trailing whitespace from each line. A sentinel newline makes the
	// final line visible to the regexp; it is removed again afterwards.
	terminated := strings.HasSuffix(s, "\n")
	if !terminated {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	if !terminated {
		s = strings.TrimSuffix(s, "\n")
	}

	// Collapse 3+ consecutive newlines to 2
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	return s
}
