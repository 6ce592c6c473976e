// Package style resolves the typography of document blocks from CSS.
package style

import (
	"strconv"
	"strings"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/text"
)

// UserAgentCSS is the default stylesheet for editor content
const UserAgentCSS = `
body { font-family: Helvetica, sans-serif; font-size: 16px; line-height: 24px; }
h1 { font-size: 2em; line-height: 1.25; font-weight: bold; }
h2 { font-size: 1.5em; line-height: 1.3; font-weight: bold; }
h3 { font-size: 1.17em; line-height: 1.4; font-weight: bold; }
h4, h5, h6 { font-weight: bold; }
strong, b { font-weight: bold; }
em, i { font-style: italic; }
code { font-family: Courier, monospace; }
`

const rootFontSize = 16

// Computed is the resolved typography of a block or run
type Computed struct {
	FontFamily    string
	FontSize      float64
	LineHeight    float64
	Bold          bool
	Italic        bool
	PaddingTop    float64
	PaddingBottom float64

	// lineFactor is set when line-height was unitless and scales with font-size
	lineFactor float64
}

// Font returns the core font face for the style
func (c Computed) Font() text.Font {
	return text.Font{Family: text.ResolveFamily(c.FontFamily), Size: c.FontSize, Bold: c.Bold, Italic: c.Italic}
}

func initial() Computed {
	return Computed{FontFamily: "Helvetica", FontSize: rootFontSize, lineFactor: 1.2, LineHeight: 1.2 * rootFontSize}
}

// Resolver computes styles for blocks and runs. Later stylesheets take
// precedence over earlier ones at equal specificity.
type Resolver struct {
	sheets []*Stylesheet
	body   Computed
}

// NewResolver creates a resolver over the user agent stylesheet and author sheets
func NewResolver(author ...*Stylesheet) *Resolver {
	ua, _ := ParseString(UserAgentCSS)
	r := &Resolver{sheets: append([]*Stylesheet{ua}, author...)}
	r.body = r.compute([]string{"body"}, initial())
	return r
}

// Block returns the computed style of a block
func (r *Resolver) Block(b *doc.Block) Computed {
	return r.compute([]string{"body", TagName(b)}, r.body)
}

// Run returns the style of text with marks inside a block
func (r *Resolver) Run(b *doc.Block, marks doc.Marks) Computed {
	path := []string{"body", TagName(b)}
	c := r.Block(b)
	c.PaddingTop, c.PaddingBottom = 0, 0
	for _, tag := range markTags(marks) {
		path = append(path, tag)
		c = r.compute(path, c)
	}
	return c
}

// TagName returns the HTML element name of a block
func TagName(b *doc.Block) string {
	if b.Type == doc.Heading {
		return "h" + strconv.Itoa(b.Level)
	}
	return "p"
}

func markTags(m doc.Marks) []string {
	var tags []string
	if m.Has(doc.Bold) {
		tags = append(tags, "strong")
	}
	if m.Has(doc.Italic) {
		tags = append(tags, "em")
	}
	if m.Has(doc.Underline) {
		tags = append(tags, "u")
	}
	if m.Has(doc.Code) {
		tags = append(tags, "code")
	}
	return tags
}

type cascaded struct {
	decl        Declaration
	specificity int
	order       int
}

// compute cascades the declarations matching the last element of path
// and resolves them against the parent style
func (r *Resolver) compute(path []string, parent Computed) Computed {
	winners := map[string]cascaded{}
	order := 0
	for _, sheet := range r.sheets {
		for _, rule := range sheet.Rules {
			for _, sel := range rule.Selectors {
				if !selectorMatches(path, sel) {
					continue
				}
				spec := len(strings.Fields(sel))
				for _, d := range rule.Declarations {
					order++
					cur, ok := winners[d.Property]
					if !ok || beats(d, spec, cur) {
						winners[d.Property] = cascaded{decl: d, specificity: spec, order: order}
					}
				}
			}
		}
	}

	c := parent
	c.PaddingTop, c.PaddingBottom = 0, 0
	if w, ok := winners["font-family"]; ok {
		c.FontFamily = w.decl.Value
	}
	if w, ok := winners["font-size"]; ok {
		if v, ok := parseLength(w.decl.Value, parent.FontSize, parent.FontSize); ok && v > 0 {
			c.FontSize = v
		}
	}
	if c.lineFactor > 0 {
		c.LineHeight = c.lineFactor * c.FontSize
	}
	if w, ok := winners["line-height"]; ok {
		r.applyLineHeight(&c, w.decl.Value)
	}
	if w, ok := winners["font-weight"]; ok {
		c.Bold = isBold(w.decl.Value, parent.Bold)
	}
	if w, ok := winners["font-style"]; ok {
		v := strings.ToLower(w.decl.Value)
		c.Italic = v == "italic" || v == "oblique"
	}
	if w, ok := winners["padding"]; ok {
		c.PaddingTop, c.PaddingBottom = parsePadding(w.decl.Value, c.FontSize)
	}
	if w, ok := winners["padding-top"]; ok {
		c.PaddingTop, _ = parseLength(w.decl.Value, c.FontSize, 0)
	}
	if w, ok := winners["padding-bottom"]; ok {
		c.PaddingBottom, _ = parseLength(w.decl.Value, c.FontSize, 0)
	}
	return c
}

func beats(d Declaration, spec int, cur cascaded) bool {
	if d.Important != cur.decl.Important {
		return d.Important
	}
	return spec >= cur.specificity
}

func (r *Resolver) applyLineHeight(c *Computed, v string) {
	v = strings.TrimSpace(v)
	if v == "normal" {
		c.lineFactor = 1.2
		c.LineHeight = 1.2 * c.FontSize
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		c.lineFactor = f
		c.LineHeight = f * c.FontSize
		return
	}
	if px, ok := parseLength(v, c.FontSize, c.FontSize); ok && px > 0 {
		c.lineFactor = 0
		c.LineHeight = px
	}
}

func isBold(v string, parent bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	case "normal", "lighter", "100", "200", "300", "400", "500":
		return false
	}
	return parent
}

func parsePadding(v string, fontSize float64) (top, bottom float64) {
	parts := strings.Fields(v)
	if len(parts) == 0 {
		return 0, 0
	}
	top, _ = parseLength(parts[0], fontSize, 0)
	bottom = top
	if len(parts) >= 3 {
		bottom, _ = parseLength(parts[2], fontSize, 0)
	}
	return top, bottom
}

// parseLength converts a CSS length to pixels. em and bare numbers are
// relative to fontSize, percentages to percentBase.
func parseLength(v string, fontSize, percentBase float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	units := []struct {
		suffix string
		scale  float64
	}{
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"rem", rootFontSize},
		{"em", fontSize},
		{"%", percentBase / 100},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(v, u.suffix); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0, false
			}
			return f * u.scale, true
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// selectorMatches matches a descendant selector of element names against
// an element path. Classes, ids and attributes never match.
func selectorMatches(path []string, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || len(path) == 0 {
		return false
	}
	if !matchElement(path[len(path)-1], parts[len(parts)-1]) {
		return false
	}
	i := len(path) - 2
	for p := len(parts) - 2; p >= 0; p-- {
		for i >= 0 && !matchElement(path[i], parts[p]) {
			i--
		}
		if i < 0 {
			return false
		}
		i--
	}
	return true
}

var aliases = map[string]string{"b": "strong", "i": "em"}

func matchElement(tag, sel string) bool {
	if sel == "*" {
		return true
	}
	if strings.ContainsAny(sel, ".#[:") {
		return false
	}
	sel = strings.ToLower(sel)
	if a, ok := aliases[sel]; ok {
		sel = a
	}
	return sel == tag
}
