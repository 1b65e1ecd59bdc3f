// Package ingestion turns uploaded résumé documents into clean plain text.
package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRun   = regexp.MustCompile(` +`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
)

// CleanText normalizes text extracted from a document: line endings become
// LF, tabs become spaces, runs of spaces collapse, any run of blank lines
// becomes a single blank line and non-printable characters are dropped.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\t", " ")
	content = strings.Map(printableOrNewline, content)
	content = spaceRun.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	content = strings.Join(lines, "\n")

	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

func printableOrNewline(r rune) rune {
	switch {
	case r == '\n':
		return r
	case r == unicode.ReplacementChar:
		return -1
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsPrint(r):
		return r
	default:
		return -1
	}
}
