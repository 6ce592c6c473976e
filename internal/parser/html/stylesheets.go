package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleSource is one author stylesheet referenced by a document. Exactly
// one of Href and Text is set.
type StyleSource struct {
	// Href is the target of a <link rel="stylesheet">.
	Href string
	// Text is the content of a <style> block.
	Text string
}

// Stylesheets walks the document in source order and returns its external
// <link rel="stylesheet"> references and inline <style> blocks
func Stylesheets(r io.Reader) ([]StyleSource, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var out []StyleSource
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Link:
				href := attr(n, "href")
				if href != "" && strings.Contains(strings.ToLower(attr(n, "rel")), "stylesheet") {
					out = append(out, StyleSource{Href: href})
				}
			case atom.Style:
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
						b.WriteString("\n")
					}
				}
				if text := strings.TrimSpace(b.String()); text != "" {
					out = append(out, StyleSource{Text: text})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}
