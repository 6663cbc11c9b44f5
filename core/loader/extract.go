package loader

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/siherrmann/urlrag/model"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	whitespace   = regexp.MustCompile(`\s+`)
	blockEnd     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|ul|ol|dl|dt|dd|table|tr|blockquote|pre|section|article|header|footer|aside|figure|figcaption)>`)
	lineBreak    = regexp.MustCompile(`(?i)<br\s*/?>`)
	tableCellEnd = regexp.MustCompile(`(?i)</(td|th)>`)
)

// strictHTMLPolicy returns a policy stripping every element and attribute
func strictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ExtractDocument extracts the readable article of a page.
// The text keeps paragraphs separated by blank lines.
func ExtractDocument(page string, rawURL string) (*model.Document, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	article, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing page: %w", err)
	}

	text := htmlToText(article.Content)
	if text == "" {
		text = normalizeText(article.TextContent)
	}

	metadata := model.Metadata{}
	if article.Excerpt != "" {
		metadata[model.MetadataDescription] = strings.TrimSpace(article.Excerpt)
	}
	if article.Language != "" {
		metadata[model.MetadataLanguage] = article.Language
	}
	if article.SiteName != "" {
		metadata[model.MetadataSiteName] = strings.TrimSpace(article.SiteName)
	}

	return model.NewDocument(rawURL, strings.TrimSpace(article.Title), text, metadata), nil
}

// htmlToText turns article HTML into plain text.
// Block elements end a paragraph, <br> ends a line.
func htmlToText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	content = whitespace.ReplaceAllString(content, " ")
	content = blockEnd.ReplaceAllString(content, "$0\n\n")
	content = lineBreak.ReplaceAllString(content, "\n")
	content = tableCellEnd.ReplaceAllString(content, "$0 ")

	text := html.UnescapeString(strictHTMLPolicy().Sanitize(content))
	return normalizeText(text)
}

// normalizeText collapses whitespace within lines and blank line runs into one paragraph break
func normalizeText(text string) string {
	paragraphs := []string{}
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
			continue
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
			lines = []string{}
		}
	}
	if len(lines) > 0 {
		paragraphs = append(paragraphs, strings.Join(lines, "\n"))
	}

	return strings.Join(paragraphs, "\n\n")
}
