package pagination

import (
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
)

// Measure reads the geometry of every top-level block in one pass. Blocks
// without a rendered element are skipped, so the result may be shorter than
// the document. The result shares no memory with the substrate.
func Measure(d *doc.Doc, s Substrate) []page.BlockMeasurement {
	ms := make([]page.BlockMeasurement, 0, d.ChildCount())
	d.ForEach(func(_ *doc.Block, pos, _ int) {
		el, ok := s.ElementAt(pos)
		if !ok {
			return
		}
		ms = append(ms, page.BlockMeasurement{
			Pos:         pos,
			TotalHeight: el.BoundingRect().Height,
			Lines:       copyRects(el.LineRects()),
		})
	})
	return ms
}

// MeasurementIndex looks up the measurement of a block by its position
type MeasurementIndex map[int]page.BlockMeasurement

// Index builds the lookup table for one pass
func Index(ms []page.BlockMeasurement) MeasurementIndex {
	idx := make(MeasurementIndex, len(ms))
	for _, m := range ms {
		idx[m.Pos] = m
	}
	return idx
}

func copyRects(rects []page.Rect) []page.Rect {
	out := make([]page.Rect, len(rects))
	copy(out, rects)
	return out
}

func sumHeights(rects []page.Rect) float64 {
	h := 0.0
	for _, r := range rects {
		h += r.Height
	}
	return h
}
