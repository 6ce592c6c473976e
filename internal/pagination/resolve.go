package pagination

import (
	"github.com/gompdf/pageflow/internal/page"
)

// Epsilon nudges the sample point below a line's top edge so it lands
// inside the line and not on the boundary with the previous one
const Epsilon = 1.0

// ResolveSplitPositions fills Split.ResolvedPos for every split that has
// lines after its kept prefix. It samples the top-left corner of the first
// overflow line and maps it to a document position. Splits whose point does
// not resolve stay unresolved. It returns the number of resolved splits.
func ResolveSplitPositions(entries []page.PageEntry, index MeasurementIndex, s Substrate) int {
	resolved := 0
	for _, e := range entries {
		if e.Split == nil {
			continue
		}
		m, ok := index[e.Split.SourcePos]
		if !ok {
			continue
		}
		next := e.Split.SplitAfterLine + 1
		if next <= 0 || next >= len(m.Lines) {
			continue
		}
		line := m.Lines[next]
		if pos, ok := locate(s, line.X, line.Y+Epsilon); ok {
			e.Split.ResolvedPos = &pos
			resolved++
		}
	}
	return resolved
}

func locate(s Substrate, x, y float64) (int, bool) {
	if cl, ok := s.(CoordsLocator); ok {
		return cl.PosAtCoords(x, y)
	}
	if rl, ok := s.(RangeLocator); ok {
		c, ok := rl.CaretFromPoint(x, y)
		if !ok {
			return 0, false
		}
		return rl.PosFromCaret(c)
	}
	return 0, false
}
