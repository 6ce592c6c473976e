package page

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a layout payload does not have the expected shape
var ErrInvalidLayout = errors.New("invalid layout result")

// Rect is a rendered rectangle in viewport coordinates
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom returns the bottom edge of the rectangle
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Contains reports whether the point lies inside the rectangle.
// The top and left edges are inclusive, the bottom and right edges are not.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// BlockMeasurement is the geometry captured for one top-level block
type BlockMeasurement struct {
	Pos         int     `json:"pos"`
	TotalHeight float64 `json:"totalHeight"`
	Lines       []Rect  `json:"lines"`
}

// Decoration marks an entry that starts a new page
type Decoration struct {
	MarginTop float64 `json:"marginTop"`
}

// Split describes a mid-block page boundary
type Split struct {
	// SplitAfterLine is the index, within the source block's lines, of the
	// last line kept before the boundary.
	SplitAfterLine int  `json:"splitAfterLine"`
	SourcePos      int  `json:"sourcePos"`
	ResolvedPos    *int `json:"resolvedPos,omitempty"`
}

// Resolved reports whether the split has an exact document offset
func (s *Split) Resolved() bool {
	return s != nil && s.ResolvedPos != nil
}

// PageEntry is one packed chunk of a source block
type PageEntry struct {
	Height     float64     `json:"height"`
	Lines      []Rect      `json:"lines"`
	Decoration *Decoration `json:"decoration,omitempty"`
	Split      *Split      `json:"split,omitempty"`

	// SourceIndex and SourcePos identify the measured block this entry was cut from.
	SourceIndex int `json:"sourceIndex"`
	SourcePos   int `json:"sourcePos"`
}

// StartsPage reports whether the entry is placed at the top of a new page
func (e PageEntry) StartsPage() bool {
	return e.Decoration != nil
}

// PageStart records where a page after the first begins
type PageStart struct {
	Pos            int     `json:"pos"`
	PageNumber     int     `json:"pageNumber"`
	RemainingSpace float64 `json:"remainingSpace"`
}

// LayoutResult is the pagination outcome handed to the rendering layer
type LayoutResult struct {
	PageCount  int         `json:"pageCount"`
	PageStarts []PageStart `json:"pageStartPositions"`
}

// SinglePage returns the layout of a document that fits on one page
func SinglePage() LayoutResult {
	return LayoutResult{PageCount: 1, PageStarts: []PageStart{}}
}

// Validate checks the structural invariants of a layout result
func (r *LayoutResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil result", ErrInvalidLayout)
	}
	if r.PageCount < 1 {
		return fmt.Errorf("%w: page count %d", ErrInvalidLayout, r.PageCount)
	}
	if r.PageCount != len(r.PageStarts)+1 {
		return fmt.Errorf("%w: page count %d with %d page starts", ErrInvalidLayout, r.PageCount, len(r.PageStarts))
	}
	last := -1
	for i, ps := range r.PageStarts {
		if ps.Pos <= last {
			return fmt.Errorf("%w: page start %d at %d is not after %d", ErrInvalidLayout, i, ps.Pos, last)
		}
		if ps.PageNumber != i+2 {
			return fmt.Errorf("%w: page start %d has page number %d", ErrInvalidLayout, i, ps.PageNumber)
		}
		last = ps.Pos
	}
	return nil
}

// Equal reports whether two layout results describe the same pagination
func (r LayoutResult) Equal(o LayoutResult) bool {
	if r.PageCount != o.PageCount || len(r.PageStarts) != len(o.PageStarts) {
		return false
	}
	for i := range r.PageStarts {
		if r.PageStarts[i] != o.PageStarts[i] {
			return false
		}
	}
	return true
}
