package docling

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
	reSpaceRun           = regexp.MustCompile(`\s+`)
)

// stripControl makes s valid UTF-8 and drops control characters except \n and \t.
func stripControl(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// normalizeText is applied to every text item: one line, single spaces, trimmed.
func normalizeText(s string) string {
	s = stripControl(s)
	s = reSpaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normalizeCode keeps line structure and indentation but fixes line endings,
// strips trailing whitespace and drops leading/trailing blank lines.
func normalizeCode(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = stripControl(s)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	return strings.Trim(s, "\n")
}

// normalizeOutput post-processes rendered Markdown/text exports:
// - Normalize line endings (CRLF -> LF)
// - Strip trailing whitespace from each line
// - Collapse 3+ consecutive newlines to 2
// - Strip non-printable/control characters (keep \n, \t)
// - Trim leading/trailing whitespace from final output
func normalizeOutput(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = stripControl(s)

	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
