package text

import (
	"strings"
)

// Font identifies a core font face at a size in pixels
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Style returns the fpdf style string for the face
func (f Font) Style() string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

// ResolveFamily maps a CSS font-family list to a core PDF font family
func ResolveFamily(cssFamily string) string {
	for _, part := range strings.Split(cssFamily, ",") {
		name := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "'\""))
		switch strings.ToLower(name) {
		case "arial", "helvetica", "sans-serif", "inter", "system-ui":
			return "Helvetica"
		case "times", "times new roman", "serif", "georgia":
			return "Times"
		case "courier", "courier new", "monospace":
			return "Courier"
		}
	}
	return "Helvetica"
}
