package processing

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/DeafMist/news-briefing/internal/models"
)

var (
	whitespace     = regexp.MustCompile(`\s+`)
	truncationMark = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)
	anchor         = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)
	blockTag       = regexp.MustCompile(`(?i)</?(h[1-6]|p|div|br|li|ul|ol|tr|table)(\s[^>]*)?/?>`)
)

var (
	strictPolicy *bluemonday.Policy
	policyOnce   sync.Once
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// SelectCleanContent picks the text to summarize: the cleaned content when it
// is non-empty, otherwise the cleaned description, otherwise "". Content that
// is only markup or whitespace falls back to the description.
func SelectCleanContent(a models.Article) string {
	if c := CleanSnippet(a.Content); c != "" {
		return c
	}
	return CleanSnippet(a.Description)
}

// CleanSnippet strips markup and entities from a news snippet, drops the
// "[+N chars]" marker the news API appends to truncated content and squeezes whitespace.
func CleanSnippet(input string) string {
	if input == "" {
		return ""
	}
	text := html.UnescapeString(strict().Sanitize(input))
	text = truncationMark.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// PlainText renders an HTML document as plain text, one block per line.
// Links become "text (url)".
func PlainText(doc string) string {
	if doc == "" {
		return ""
	}
	text := anchor.ReplaceAllString(doc, "$2 ($1)")
	text = blockTag.ReplaceAllString(text, "\n")
	text = html.UnescapeString(strict().Sanitize(text))

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
