package pagination

import (
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
)

// Substrate is the rendered view the engine reads geometry from
type Substrate interface {
	// ElementAt returns the element rendering the block that starts at pos.
	ElementAt(pos int) (page.Element, bool)
}

// CoordsLocator maps a viewport point directly to a document position.
// Substrates implement it when they offer a direct point query.
type CoordsLocator interface {
	PosAtCoords(x, y float64) (int, bool)
}

// RangeLocator maps a viewport point to a caret and the caret to a position.
// It is the fallback when CoordsLocator is not available.
type RangeLocator interface {
	CaretFromPoint(x, y float64) (page.Caret, bool)
	PosFromCaret(c page.Caret) (int, bool)
}

// SnapshotFunc returns the document the substrate currently renders
// together with the substrate itself
type SnapshotFunc func() (*doc.Doc, Substrate)

// Dispatcher is the editing surface the engine proposes mutations to
type Dispatcher interface {
	Doc() *doc.Doc
	Dispatch(tr *doc.Transaction) error
}

// Trigger receives layout requests, usually a scheduler
type Trigger interface {
	Request(d *doc.Doc)
}
