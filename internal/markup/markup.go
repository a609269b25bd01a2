// Package markup handles the lightweight emphasis syntax allowed in message
// bodies: **bold**, *italic* and literal newlines.
package markup

import (
	"regexp"
	"strings"

	"github.com/rivo/tview"
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
)

// Strip removes emphasis markers and folds newlines into spaces.
func Strip(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "\r\n", " ")
	return strings.ReplaceAll(text, "\n", " ")
}

// Truncate returns the first n runes of s and whether anything was cut.
func Truncate(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s, false
	}
	return string(runes[:n]), true
}

// Tview converts a message body into tview dynamic-color markup. The body is
// escaped first so user text cannot inject style tags.
func Tview(text string) string {
	text = tview.Escape(SanitizeTerminal(text))
	text = boldRe.ReplaceAllString(text, "[::b]$1[::-]")
	text = italicRe.ReplaceAllString(text, "[::i]$1[::-]")
	return strings.ReplaceAll(text, "\r\n", "\n")
}
