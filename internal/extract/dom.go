package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseDocument parses an HTML page once so the matter parser and the
// pagination discoverer can share the tree
func ParseDocument(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// breakingElements render as a visual break, so their boundaries become spaces
var breakingElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "td": true, "tr": true,
}

// selectionText returns the whitespace-collapsed text of every node in sel
func selectionText(sel *goquery.Selection) string {
	var buf strings.Builder
	for _, n := range sel.Nodes {
		writeText(&buf, n)
		buf.WriteByte(' ')
	}
	return collapseSpace(buf.String())
}

// writeText appends the text content of n, separating block boundaries
func writeText(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}

	breaks := n.Type == html.ElementNode && breakingElements[n.Data]
	if breaks {
		buf.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c)
	}
	if breaks {
		buf.WriteByte(' ')
	}
}

// collapseSpace trims s and folds every whitespace run into a single space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
