package style

import (
	"errors"
	"io"
	"strings"
)

// ErrUnbalanced is returned for stylesheets with unmatched braces
var ErrUnbalanced = errors.New("unbalanced braces in stylesheet")

// Declaration is a CSS property-value pair
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is a selector list with its declarations
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Stylesheet is a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseString parses CSS from a string
func ParseString(content string) (*Stylesheet, error) {
	return Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader. Rules without selectors and
// declarations without a colon are skipped.
func Parse(r io.Reader) (*Stylesheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	blocks, err := splitRules(removeComments(string(data)))
	if err != nil {
		return nil, err
	}
	sheet := &Stylesheet{}
	for _, b := range blocks {
		selectors := parseSelectors(b[0])
		if len(selectors) == 0 {
			continue
		}
		sheet.Rules = append(sheet.Rules, Rule{Selectors: selectors, Declarations: ParseDeclarations(b[1])})
	}
	return sheet, nil
}

// ParseDeclarations parses the body of a rule or an inline style attribute
func ParseDeclarations(s string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" {
			continue
		}
		d := Declaration{Property: prop, Value: value}
		if v, found := strings.CutSuffix(value, "!important"); found {
			d.Value = strings.TrimSpace(v)
			d.Important = true
		}
		out = append(out, d)
	}
	return out
}

func parseSelectors(s string) []string {
	var out []string
	for _, sel := range strings.Split(s, ",") {
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			out = append(out, sel)
		}
	}
	return out
}

func removeComments(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			b.WriteString(content)
			return b.String()
		}
		b.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		content = content[start+2+end+2:]
	}
}

// splitRules returns [selector, body] pairs. Nested blocks such as @media
// are skipped whole.
func splitRules(content string) ([][2]string, error) {
	var out [][2]string
	depth, start, open := 0, 0, 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, ErrUnbalanced
			}
			if depth == 0 {
				sel := strings.TrimSpace(content[start:open])
				body := content[open+1 : i]
				if !strings.HasPrefix(sel, "@") && !strings.Contains(body, "{") {
					out = append(out, [2]string{sel, body})
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, ErrUnbalanced
	}
	return out, nil
}
