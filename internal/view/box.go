package view

import (
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/text"
)

// BlockBox is the rendered box of one top-level block
type BlockBox struct {
	Index int
	Pos   int
	Block *doc.Block

	X      float64
	Y      float64
	Width  float64
	Height float64

	// MarginTop is the page-start decoration applied above the box.
	MarginTop     float64
	PaddingTop    float64
	PaddingBottom float64
	LineHeight    float64

	Lines []LineBox
}

// LineBox is one rendered line of a block
type LineBox struct {
	Rect page.Rect
	text.Line
}

// BoundingRect returns the border box, margin excluded
func (b *BlockBox) BoundingRect() page.Rect {
	return page.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// LineRects returns a copy of the line rectangles
func (b *BlockBox) LineRects() []page.Rect {
	rects := make([]page.Rect, len(b.Lines))
	for i, l := range b.Lines {
		rects[i] = l.Rect
	}
	return rects
}

// Bottom returns the lower edge of the box
func (b *BlockBox) Bottom() float64 {
	return b.Y + b.Height
}

// offsetAt maps a point inside the box to a character offset
func (b *BlockBox) offsetAt(x, y float64) int {
	if len(b.Lines) == 0 {
		return 0
	}
	for _, l := range b.Lines {
		if y < l.Rect.Bottom() {
			return l.OffsetAt(x - l.Rect.X)
		}
	}
	last := b.Lines[len(b.Lines)-1]
	return last.OffsetAt(x - last.Rect.X)
}
