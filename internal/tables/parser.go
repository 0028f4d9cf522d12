package tables

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func parseDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func cellTexts(s *goquery.Selection) []string {
	var content []string
	s.Each(func(_ int, c *goquery.Selection) {
		content = append(content, strings.TrimSpace(c.Text()))
	})
	return content
}
