// Package decoration turns a layout result into node decorations that push
// page-starting blocks down to the top of their page.
package decoration

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
)

// Decoration adds a top margin to the block starting at Pos
type Decoration struct {
	Pos        int
	PageNumber int
	MarginTop  float64
}

// Style returns the inline style applied to the decorated block
func (d Decoration) Style() string {
	return "margin-top: " + strconv.FormatFloat(d.MarginTop, 'f', -1, 64) + "px"
}

// Set is an immutable list of decorations ordered by position
type Set struct {
	decos []Decoration
}

// Build creates one decoration per page start. Page starts that do not
// coincide with a block start are skipped.
func Build(layout page.LayoutResult, d *doc.Doc, marginStack float64) Set {
	var s Set
	for _, ps := range layout.PageStarts {
		if _, _, ok := d.BlockAt(ps.Pos); !ok {
			continue
		}
		s.decos = append(s.decos, Decoration{
			Pos:        ps.Pos,
			PageNumber: ps.PageNumber,
			MarginTop:  ps.RemainingSpace + marginStack,
		})
	}
	return s
}

// Len returns the number of decorations
func (s Set) Len() int {
	return len(s.decos)
}

// All returns a copy of the decorations
func (s Set) All() []Decoration {
	out := make([]Decoration, len(s.decos))
	copy(out, s.decos)
	return out
}

// At returns the decoration on the block starting at pos
func (s Set) At(pos int) (Decoration, bool) {
	i := sort.Search(len(s.decos), func(i int) bool { return s.decos[i].Pos >= pos })
	if i < len(s.decos) && s.decos[i].Pos == pos {
		return s.decos[i], true
	}
	return Decoration{}, false
}

// Map moves decorations through a transaction's mapping. Decorations whose
// block was deleted or no longer starts at the mapped position are dropped.
func (s Set) Map(m *doc.Mapping, d *doc.Doc) Set {
	var out Set
	for _, dec := range s.decos {
		r := m.MapResult(dec.Pos, 1)
		if r.Deleted {
			continue
		}
		if _, _, ok := d.BlockAt(r.Pos); !ok {
			continue
		}
		if n := len(out.decos); n > 0 && out.decos[n-1].Pos == r.Pos {
			continue
		}
		dec.Pos = r.Pos
		out.decos = append(out.decos, dec)
	}
	return out
}

// Plugin holds the decoration state of an editor
type Plugin struct {
	marginStack float64
	layout      page.LayoutResult
	set         Set
	log         *slog.Logger
}

// NewPlugin creates the plugin state for an empty layout
func NewPlugin(marginStack float64, logger *slog.Logger) *Plugin {
	return &Plugin{
		marginStack: marginStack,
		layout:      page.LayoutResult{PageCount: 1},
		log:         logger,
	}
}

// Apply updates the state for a dispatched transaction. An attached layout
// replaces the state; an invalid one is rejected and the prior state kept.
// Otherwise a document change remaps the existing decorations.
func (p *Plugin) Apply(tr *doc.Transaction) error {
	if tr.Layout != nil {
		if err := tr.Layout.Validate(); err != nil {
			if p.log != nil {
				p.log.Warn("rejecting layout payload", "error", err)
			}
			if tr.DocChanged() {
				p.set = p.set.Map(tr.Mapping(), tr.Doc())
			}
			return fmt.Errorf("apply layout: %w", err)
		}
		p.layout = *tr.Layout
		p.set = Build(p.layout, tr.Doc(), p.marginStack)
		return nil
	}
	if tr.DocChanged() {
		p.set = p.set.Map(tr.Mapping(), tr.Doc())
	}
	return nil
}

// Layout returns the last accepted layout result
func (p *Plugin) Layout() page.LayoutResult {
	return p.layout
}

// Decorations returns the current decoration set
func (p *Plugin) Decorations() Set {
	return p.set
}
