// Package extract turns HTML record content into plain text.
//
// Corpora scraped from news sites often carry the raw article markup in their
// content field. Abstract budgets are measured on that field, so markup would
// inflate every theme's budget; PlainText strips it before the pipeline runs.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

var (
	tagPattern = regexp.MustCompile(`(?i)</?(html|body|p|div|span|br|article|section|h[1-6]|ul|ol|li|a|table|td|tr|strong|em|b|i)\b[^>]*>`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	edgeSpaces = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

// LooksLikeHTML reports whether content appears to contain HTML markup.
func LooksLikeHTML(content string) bool {
	return tagPattern.MatchString(content)
}

// PlainText returns the readable text of HTML content.
//
// By default go-readability isolates the main article and its text is used.
// When includeAll is true, or readability finds nothing, the text of the whole
// document is used instead. Content without markup is returned unchanged.
func PlainText(content string, includeAll bool) (string, error) {
	if !LooksLikeHTML(content) {
		return content, nil
	}

	if !includeAll {
		article, err := readability.FromReader(strings.NewReader(content), &url.URL{})
		if err == nil {
			if text := normalize(article.TextContent); text != "" {
				return text, nil
			}
		}
	}

	return allText(content)
}

// allText collects the text of every node outside script and style elements.
func allText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, article, section").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return normalize(doc.Text()), nil
}

func normalize(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = edgeSpaces.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
