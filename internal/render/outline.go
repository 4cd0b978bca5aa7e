package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// extractOutline walks the rendered fragment collecting h2/h3 headings for
// the in-page navigation, plus the first h1 for the page title. Rendered
// output from our own pipeline always parses, so a parse failure yields an
// empty outline rather than an error.
func extractOutline(fragment []byte) (outline []Heading, firstH1 string) {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return nil, ""
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				if firstH1 == "" {
					firstH1 = extractText(n)
				}
			case "h2":
				outline = append(outline, Heading{Level: 2, ID: getAttr(n, "id"), Text: extractText(n)})
			case "h3":
				outline = append(outline, Heading{Level: 3, ID: getAttr(n, "id"), Text: extractText(n)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return outline, firstH1
}

func getAttr(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
