// Package richtext converts user-entered markup. Inline edits arrive as the
// HTML a contenteditable element produces and are stored as plain text;
// journal entries are stored as markdown and rendered to HTML for display.
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// PlainText strips markup from contenteditable HTML. Line breaks and block
// elements become newlines; runs of spaces collapse and blank lines at the
// ends are dropped.
func PlainText(fragment string) (string, error) {
	if !strings.ContainsAny(fragment, "<&") {
		return normalizeLines(fragment), nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse html fragment: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("div, p, li, h1, h2, h3, h4, h5, h6, blockquote").Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
	})
	return normalizeLines(doc.Text()), nil
}

// SingleLine is PlainText folded onto one line, for titles and item text.
func SingleLine(fragment string) (string, error) {
	text, err := PlainText(fragment)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

func normalizeLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown renders journal content to HTML. Raw HTML in the source is
// omitted from the output.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Excerpt returns the first n runes of the entry's visible text.
func Excerpt(src string, n int) string {
	rendered, err := Markdown(src)
	if err != nil {
		rendered = src
	}
	text, err := SingleLine(rendered)
	if err != nil {
		return ""
	}
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
