// Package textnorm turns raw HTML into single-spaced plain text.
package textnorm

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements whose text never reaches the reader.
const droppedElements = "script, style, noscript, template"

// HTMLToText strips markup from raw HTML, joins the remaining text nodes with
// single spaces and collapses whitespace. Empty input yields empty output.
func HTMLToText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CollapseWhitespace(raw)
	}
	doc.Find(droppedElements).Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return CollapseWhitespace(strings.Join(parts, " "))
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			if t := strings.TrimSpace(s.Text()); t != "" {
				*parts = append(*parts, t)
			}
		case "#comment", "#doctype":
		default:
			collectText(s, parts)
		}
	})
}

// CollapseWhitespace replaces every run of Unicode whitespace with a single
// space and trims both ends. Other runes pass through untouched.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
