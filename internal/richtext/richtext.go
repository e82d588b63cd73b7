// Package richtext converts between the sanitized HTML stored in entries and plain text.
package richtext

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     = bluemonday.UGCPolicy()
	tagPattern = regexp.MustCompile(`<[^>]+>`)
	wsPattern  = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Sanitize strips scripts, handlers and any markup outside the user content policy.
func Sanitize(markup string) string {
	return strings.TrimSpace(policy.Sanitize(markup))
}

// PlainText removes tags, decodes entities and collapses whitespace.
func PlainText(markup string) string {
	if markup == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(markup, " ")
	text = html.UnescapeString(text)
	text = wsPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// WordCount counts whitespace separated words of the plain text.
func WordCount(markup string) int {
	return len(strings.Fields(PlainText(markup)))
}

// Preview returns the first n characters of the plain text, with "..." when cut.
func Preview(markup string, n int) string {
	text := PlainText(markup)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}

// FromPlainText turns typed text into paragraphs. Blank lines separate paragraphs,
// single newlines become <br>.
func FromPlainText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(line))
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
