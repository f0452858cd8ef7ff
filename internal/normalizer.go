package internal

import (
	"regexp"
	"strings"
)

var (
	inlineSpaceRe = regexp.MustCompile(`[^\S\n]+`)
	newlineEdgeRe = regexp.MustCompile(` *\n *`)
	newlineRunRe  = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText canonicalizes extracted message content: runs of
// non-newline whitespace collapse to a single space, spaces hugging a
// block boundary are dropped, runs of three or more newlines collapse
// to exactly two, and the result is trimmed.
func NormalizeText(s string) string {
	s = inlineSpaceRe.ReplaceAllString(s, " ")
	s = newlineEdgeRe.ReplaceAllString(s, "\n")
	s = newlineRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// UnescapeNewlines converts the literal two-character escape sequence
// for newline into a real newline character.
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
