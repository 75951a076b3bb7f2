package ingest

import (
	"regexp"
	"strings"
)

var (
	headerLinePattern = regexp.MustCompile(`(?im)^(Page\s\d+|Chapter\s\d+.*?)\n`)
	citationPattern   = regexp.MustCompile(`\[\d+\]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanText strips page/chapter header lines and numeric citation markers,
// then collapses whitespace runs into single spaces.
func CleanText(text string) string {
	text = headerLinePattern.ReplaceAllString(text, "")
	text = citationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
