// Package text measures text with core font metrics and breaks it into lines.
package text

import (
	"unicode"
)

// Span is a run of text in one font
type Span struct {
	Text string
	Font Font
}

// Line is one wrapped line of a paragraph, expressed in rune offsets
type Line struct {
	// Start and End delimit the runes [Start, End) of the paragraph, trailing
	// spaces included.
	Start int
	End   int
	// Width excludes trailing spaces, which hang past the right edge.
	Width float64
	// Advances holds the width of each rune of the line.
	Advances []float64
}

// OffsetAt returns the rune offset closest to x within the line
func (l Line) OffsetAt(x float64) int {
	if x <= 0 {
		return l.Start
	}
	cur := 0.0
	for i, w := range l.Advances {
		if x < cur+w/2 {
			return l.Start + i
		}
		cur += w
	}
	return l.End
}

// Wrap breaks spans into lines no wider than maxWidth. Breaks happen after
// spaces; a word longer than the line is broken between characters. Empty
// text yields no lines.
func Wrap(spans []Span, maxWidth float64, m Measurer) []Line {
	var chars []rune
	var adv []float64
	for _, s := range spans {
		chars = append(chars, []rune(s.Text)...)
		adv = append(adv, m.RuneWidths(s.Text, s.Font)...)
	}
	if len(chars) == 0 {
		return nil
	}

	var lines []Line
	for start := 0; start < len(chars); {
		end, width := breakLine(chars, adv, start, maxWidth)
		lines = append(lines, Line{Start: start, End: end, Width: width, Advances: adv[start:end]})
		start = end
	}
	return lines
}

// breakLine finds the end of the line starting at start
func breakLine(chars []rune, adv []float64, start int, maxWidth float64) (int, float64) {
	run, width := 0.0, 0.0
	lastBreak, lastBreakWidth := -1, 0.0
	for i := start; i < len(chars); i++ {
		if unicode.IsSpace(chars[i]) {
			run += adv[i]
			if i+1 < len(chars) && !unicode.IsSpace(chars[i+1]) {
				lastBreak, lastBreakWidth = i+1, width
			}
			continue
		}
		if run+adv[i] > maxWidth && i > start {
			if lastBreak > start {
				return lastBreak, lastBreakWidth
			}
			return i, width
		}
		run += adv[i]
		width = run
	}
	return len(chars), width
}
