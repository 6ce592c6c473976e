// Package html converts between HTML fragments and documents.
package html

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/gompdf/pageflow/internal/doc"
)

// SplitIDAttr carries a block's continuation identifier in HTML
const SplitIDAttr = "data-split-id"

// ParseString parses HTML from a string
func ParseString(content string) (*doc.Doc, error) {
	return Parse(strings.NewReader(content))
}

// Parse reads an HTML document or fragment into a document. Block elements
// become paragraphs or headings; loose inline content is wrapped in a paragraph.
func Parse(r io.Reader) (*doc.Doc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	c := &collector{}
	body := findBody(root)
	if body == nil {
		body = root
	}
	c.walkBlocks(body)
	c.flush()
	return doc.New(c.blocks...), nil
}

type collector struct {
	blocks []*doc.Block
	// pending holds inline content seen outside any block element
	pending []doc.Run
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func (c *collector) walkBlocks(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.ElementNode && textBlock(child.DataAtom):
			c.flush()
			c.blocks = append(c.blocks, c.block(child))
		case child.Type == html.ElementNode && child.DataAtom == atom.Br:
			c.flush()
		case child.Type == html.ElementNode && container(child.DataAtom):
			c.flush()
			c.walkBlocks(child)
		case child.Type == html.ElementNode && skipped(child.DataAtom):
		default:
			collectRuns(child, 0, &c.pending)
		}
	}
}

func (c *collector) flush() {
	runs := collapse(c.pending)
	c.pending = nil
	if len(runs) == 0 {
		return
	}
	c.blocks = append(c.blocks, doc.NewBlock(doc.Paragraph, runs...))
}

func (c *collector) block(n *html.Node) *doc.Block {
	var runs []doc.Run
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectRuns(child, 0, &runs)
	}
	t := doc.Paragraph
	if headingLevel(n.DataAtom) > 0 {
		t = doc.Heading
	}
	b := doc.NewBlock(t, collapse(runs)...)
	if t == doc.Heading {
		b, _ = b.WithAttr(doc.AttrLevel, strconv.Itoa(headingLevel(n.DataAtom)))
	}
	if id := attr(n, SplitIDAttr); id != "" {
		b, _ = b.WithAttr(doc.AttrSplitID, id)
	}
	return b
}

func textBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Li, atom.Pre, atom.Dt, atom.Dd:
		return true
	}
	return headingLevel(a) > 0
}

func container(a atom.Atom) bool {
	switch a {
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Blockquote,
		atom.Ul, atom.Ol, atom.Dl, atom.Header, atom.Footer, atom.Aside:
		return true
	}
	return false
}

func skipped(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Head, atom.Template, atom.Img, atom.Svg:
		return true
	}
	return false
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func markOf(a atom.Atom) doc.Marks {
	switch a {
	case atom.B, atom.Strong:
		return doc.Bold
	case atom.I, atom.Em:
		return doc.Italic
	case atom.U:
		return doc.Underline
	case atom.Code, atom.Kbd, atom.Samp:
		return doc.Code
	}
	return 0
}

// collectRuns gathers the text below n with inherited marks
func collectRuns(n *html.Node, marks doc.Marks, out *[]doc.Run) {
	switch n.Type {
	case html.TextNode:
		*out = append(*out, doc.Run{Text: n.Data, Marks: marks})
	case html.ElementNode:
		if skipped(n.DataAtom) {
			return
		}
		if n.DataAtom == atom.Br {
			*out = append(*out, doc.Run{Text: " ", Marks: marks})
			return
		}
		marks |= markOf(n.DataAtom)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectRuns(c, marks, out)
		}
	}
}

// collapse normalizes runs to NFC and collapses whitespace the way a
// browser renders normal white-space, trimming both ends of the block.
func collapse(runs []doc.Run) []doc.Run {
	out := make([]doc.Run, 0, len(runs))
	lastSpace := true
	for _, r := range runs {
		var b strings.Builder
		for _, ch := range norm.NFC.String(r.Text) {
			if unicode.IsSpace(ch) {
				if !lastSpace {
					b.WriteByte(' ')
				}
				lastSpace = true
				continue
			}
			b.WriteRune(ch)
			lastSpace = false
		}
		if b.Len() > 0 {
			out = append(out, doc.Run{Text: b.String(), Marks: r.Marks})
		}
	}
	if n := len(out); n > 0 {
		last := &out[n-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text == "" {
			out = out[:n-1]
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Render writes the document as an HTML fragment, one element per block
func Render(w io.Writer, d *doc.Doc) error {
	for _, b := range d.Blocks() {
		if err := html.Render(w, blockNode(b)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders the document to a string
func RenderString(d *doc.Doc) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func blockNode(b *doc.Block) *html.Node {
	tag := atom.P
	if b.Type == doc.Heading {
		tag = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}[b.Level-1]
	}
	n := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String()}
	if b.SplitID != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: SplitIDAttr, Val: b.SplitID})
	}
	for _, r := range b.Runs() {
		var parent, inner *html.Node
		for _, a := range []struct {
			mark doc.Marks
			tag  atom.Atom
		}{{doc.Bold, atom.Strong}, {doc.Italic, atom.Em}, {doc.Underline, atom.U}, {doc.Code, atom.Code}} {
			if !r.Marks.Has(a.mark) {
				continue
			}
			el := &html.Node{Type: html.ElementNode, DataAtom: a.tag, Data: a.tag.String()}
			if inner == nil {
				parent = el
			} else {
				inner.AppendChild(el)
			}
			inner = el
		}
		txt := &html.Node{Type: html.TextNode, Data: r.Text}
		if inner == nil {
			n.AppendChild(txt)
			continue
		}
		inner.AppendChild(txt)
		n.AppendChild(parent)
	}
	return n
}
