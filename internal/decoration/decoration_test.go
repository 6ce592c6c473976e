package decoration

import (
	"errors"
	"testing"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/logging"
	"github.com/gompdf/pageflow/internal/page"
)

func threeBlocks() *doc.Doc {
	// block starts: 0, 5, 10
	return doc.New(doc.NewParagraph("aaa"), doc.NewParagraph("bbb"), doc.NewParagraph("ccc"))
}

func TestBuild(t *testing.T) {
	d := threeBlocks()
	layout := page.LayoutResult{
		PageCount: 3,
		PageStarts: []page.PageStart{
			{Pos: 5, PageNumber: 2, RemainingSpace: 12},
			{Pos: 7, PageNumber: 3, RemainingSpace: 0},
		},
	}
	s := Build(layout, d, 190)
	if s.Len() != 1 {
		t.Fatalf("expected one decoration, got %d", s.Len())
	}
	dec, ok := s.At(5)
	if !ok || dec.MarginTop != 202 || dec.PageNumber != 2 {
		t.Fatalf("decoration at 5: %+v %v", dec, ok)
	}
	if got := dec.Style(); got != "margin-top: 202px" {
		t.Fatalf("style: %q", got)
	}
	if _, ok := s.At(0); ok {
		t.Fatal("no decoration expected at 0")
	}
}

func TestMapThroughEdits(t *testing.T) {
	d := threeBlocks()
	s := Build(page.LayoutResult{PageCount: 3, PageStarts: []page.PageStart{
		{Pos: 5, PageNumber: 2},
		{Pos: 10, PageNumber: 3},
	}}, d, 0)

	tr := doc.NewTransaction(d)
	if err := tr.InsertText(1, "xx", 0); err != nil {
		t.Fatal(err)
	}
	mapped := s.Map(tr.Mapping(), tr.Doc())
	if _, ok := mapped.At(7); !ok {
		t.Fatalf("decoration should follow its block: %+v", mapped.All())
	}
	if _, ok := mapped.At(12); !ok {
		t.Fatalf("second decoration should follow its block: %+v", mapped.All())
	}

	tr = doc.NewTransaction(d)
	if err := tr.Join(5); err != nil {
		t.Fatal(err)
	}
	mapped = s.Map(tr.Mapping(), tr.Doc())
	if mapped.Len() != 1 {
		t.Fatalf("joined block must lose its decoration: %+v", mapped.All())
	}
	if _, ok := mapped.At(8); !ok {
		t.Fatalf("third block decoration should move to 8: %+v", mapped.All())
	}
}

func TestPluginApply(t *testing.T) {
	d := threeBlocks()
	p := NewPlugin(190, logging.Discard())
	if p.Layout().PageCount != 1 || p.Decorations().Len() != 0 {
		t.Fatal("initial state should be a single page")
	}

	valid := page.LayoutResult{PageCount: 2, PageStarts: []page.PageStart{{Pos: 10, PageNumber: 2, RemainingSpace: 3}}}
	tr := doc.NewTransaction(d).SetLayout(valid).MarkLayoutInternal()
	if err := p.Apply(tr); err != nil {
		t.Fatalf("apply valid layout: %v", err)
	}
	if p.Layout().PageCount != 2 || p.Decorations().Len() != 1 {
		t.Fatalf("state not replaced: %+v", p.Layout())
	}

	bad := page.LayoutResult{PageCount: 5, PageStarts: []page.PageStart{{Pos: 10, PageNumber: 2}}}
	err := p.Apply(doc.NewTransaction(d).SetLayout(bad))
	if !errors.Is(err, page.ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
	if p.Layout().PageCount != 2 || p.Decorations().Len() != 1 {
		t.Fatal("invalid payload must keep the prior state")
	}

	edit := doc.NewTransaction(d)
	if err := edit.InsertText(6, "z", 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Apply(edit); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Decorations().At(11); !ok {
		t.Fatalf("edit should remap decorations: %+v", p.Decorations().All())
	}
}
