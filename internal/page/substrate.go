package page

// Element is a rendered top-level block
type Element interface {
	// BoundingRect returns the border box of the block.
	BoundingRect() Rect
	// LineRects returns one rectangle per rendered line in reading order.
	LineRects() []Rect
}

// Caret is a point inside the rendered text of one block
type Caret struct {
	// Block is the index of the block holding the caret.
	Block int
	// Offset is the character offset inside that block.
	Offset int
}
