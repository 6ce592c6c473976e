package pagination

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/editor"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/view"
)

// smallPage fits 6 lines of 24px and 5 words of "word " per line in monospace
func smallPage() page.Config {
	return page.Config{
		PageWidth:         300,
		PageHeight:        200,
		MarginTop:         20,
		MarginRight:       20,
		MarginBottom:      20,
		MarginLeft:        20,
		PageGap:           20,
		ParagraphSpacing:  10,
		DefaultLineHeight: 24,
	}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

type harness struct {
	ed     *editor.Editor
	view   *view.View
	engine *Engine
}

func newHarness(t *testing.T, d *doc.Doc, split bool) *harness {
	t.Helper()
	return newHarnessWith(t, smallPage(), d, split)
}

func newHarnessWith(t *testing.T, cfg page.Config, d *doc.Doc, split bool) *harness {
	t.Helper()
	ed := editor.New(d, editor.WithMarginStack(cfg.MarginStack()))
	v := view.New(cfg, nil, text.Monospace{}, nil)
	t.Cleanup(v.Attach(ed))
	snapshot := func() (*doc.Doc, Substrate) {
		f := v.Frame()
		return f.Doc(), f
	}
	e := NewEngine(ed, snapshot, nil)
	e.SetOptions(Options{Config: cfg, SplitBlocks: split})
	e.SetIDFunc(counterIDs())
	return &harness{ed: ed, view: v, engine: e}
}

func TestEngineSplitsLongParagraph(t *testing.T) {
	original := words(40)
	h := newHarness(t, doc.New(doc.NewParagraph(original)), true)

	res, err := h.engine.RunLayout(context.Background())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if res.PageCount != 2 || h.engine.PageCount() != 2 {
		t.Fatalf("page count: got %d/%d, want 2", res.PageCount, h.engine.PageCount())
	}
	want := page.PageStart{Pos: 152, PageNumber: 2, RemainingSpace: 16}
	if res.PageStarts[0] != want {
		t.Fatalf("page start: got %+v, want %+v", res.PageStarts[0], want)
	}

	d := h.ed.Doc()
	if d.ChildCount() != 2 {
		t.Fatalf("blocks: got %v", d.Blocks())
	}
	if got := d.Child(0).Text() + d.Child(1).Text(); got != original {
		t.Fatal("fragments must concatenate to the original text")
	}
	if id := d.Child(0).SplitID; id == "" || d.Child(1).SplitID != id {
		t.Fatalf("fragment ids: %q %q", d.Child(0).SplitID, d.Child(1).SplitID)
	}
	if !h.ed.Layout().Equal(res) {
		t.Fatal("editor should hold the dispatched layout")
	}
	if dec, ok := h.ed.Decorations().At(152); !ok || dec.MarginTop != 16+smallPage().MarginStack() {
		t.Fatalf("decoration: got %+v %v", dec, ok)
	}
	if h.ed.CanUndo() {
		t.Fatal("layout mutations must not enter the undo history")
	}
}

func TestEngineIsIdempotent(t *testing.T) {
	h := newHarness(t, doc.New(
		doc.NewHeading(1, "Title"),
		doc.NewParagraph(words(40)),
		doc.NewParagraph(words(12)),
	), true)

	first, err := h.engine.RunLayout(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	before := h.ed.Doc()

	second, err := h.engine.RunLayout(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	after := h.ed.Doc()

	if !first.Equal(second) {
		t.Fatalf("layouts differ: %+v vs %+v", first, second)
	}
	if before.Text() != after.Text() || before.ChildCount() != after.ChildCount() {
		t.Fatalf("documents differ:\n%v\n%v", before.Blocks(), after.Blocks())
	}
	if err := second.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEngineWholeBlockMode(t *testing.T) {
	h := newHarness(t, doc.New(doc.NewParagraph(words(20)), doc.NewParagraph(words(20))), false)

	res, err := h.engine.RunLayout(context.Background())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if res.PageCount != 2 {
		t.Fatalf("page count: got %d, want 2", res.PageCount)
	}
	if h.ed.Doc().ChildCount() != 2 {
		t.Fatal("whole-block mode must not split")
	}
	if res.PageStarts[0].Pos != h.ed.Doc().PosOf(1) {
		t.Fatalf("page start: got %+v", res.PageStarts[0])
	}
}

func TestEngineRejectsStaleView(t *testing.T) {
	ed := editor.New(doc.FromText("a"))
	stale := doc.FromText("b")
	e := NewEngine(ed, func() (*doc.Doc, Substrate) {
		return stale, coordsSubstrate{}
	}, nil)
	if _, err := e.RunLayout(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want %v", err, ErrNotReady)
	}

	d := ed.Doc()
	e = NewEngine(ed, func() (*doc.Doc, Substrate) {
		return d, coordsSubstrate{}
	}, nil)
	if _, err := e.RunLayout(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("unmeasured blocks: got %v, want %v", err, ErrNotReady)
	}
	if e.PageCount() != 1 {
		t.Fatalf("failed pass must leave the page count: got %d", e.PageCount())
	}
}

func TestEngineHonoursCancelledContext(t *testing.T) {
	h := newHarness(t, doc.FromText("a"), true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.engine.RunLayout(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want %v", err, context.Canceled)
	}
}

type recordingTrigger struct {
	docs []*doc.Doc
}

func (r *recordingTrigger) Request(d *doc.Doc) {
	r.docs = append(r.docs, d)
}

func TestAttachIgnoresLayoutTransactions(t *testing.T) {
	h := newHarness(t, doc.New(doc.NewParagraph(words(40))), true)
	trig := &recordingTrigger{}
	defer h.engine.Attach(h.ed, trig)()

	if _, err := h.engine.RunLayout(context.Background()); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(trig.docs) != 0 {
		t.Fatalf("layout pass triggered %d requests", len(trig.docs))
	}

	if err := h.ed.InsertText(1, "x", 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(trig.docs) != 1 || trig.docs[0] != h.ed.Doc() {
		t.Fatalf("requests: got %d, want 1", len(trig.docs))
	}

	if err := h.ed.Dispatch(doc.NewTransaction(h.ed.Doc())); err != nil {
		t.Fatalf("empty dispatch: %v", err)
	}
	if len(trig.docs) != 1 {
		t.Fatal("a transaction without steps must not trigger layout")
	}
}

func TestEditAfterSplitRelayouts(t *testing.T) {
	original := words(40)
	h := newHarness(t, doc.New(doc.NewParagraph(original)), true)
	if _, err := h.engine.RunLayout(context.Background()); err != nil {
		t.Fatalf("layout: %v", err)
	}
	// deleting the first word pulls text back across the page boundary
	if err := h.ed.Delete(1, 6); err != nil {
		t.Fatalf("delete: %v", err)
	}
	res, err := h.engine.RunLayout(context.Background())
	if err != nil {
		t.Fatalf("relayout: %v", err)
	}
	d := h.ed.Doc()
	if got := d.Child(0).Text() + d.Child(1).Text(); got != words(39) {
		t.Fatalf("text after relayout: %q", got)
	}
	if res.PageCount != 2 {
		t.Fatalf("page count: got %d, want 2", res.PageCount)
	}
}

func TestRunSwallowsNotReady(t *testing.T) {
	ed := editor.New(doc.FromText("a"))
	e := NewEngine(ed, func() (*doc.Doc, Substrate) {
		return doc.FromText("b"), coordsSubstrate{}
	}, nil)
	if err := e.Run(context.Background(), ed.Doc()); err != nil {
		t.Fatalf("run: got %v, want <nil>", err)
	}
}

// checkPageGeometry asserts that every rendered block lies inside the content
// area of its page and that page-starting blocks sit at the content top
func checkPageGeometry(t *testing.T, cfg page.Config, f *view.Frame, res page.LayoutResult) {
	t.Helper()
	pageIndex := 0
	for i, b := range f.Boxes() {
		if i > 0 && b.MarginTop != 0 {
			pageIndex++
		}
		top := cfg.MarginTop + float64(pageIndex)*(cfg.PageHeight+cfg.PageGap)
		bottom := top + cfg.ContentHeight()
		if b.MarginTop != 0 && b.Y != top {
			t.Fatalf("block %d starts page %d at %v, want %v", i, pageIndex+1, b.Y, top)
		}
		if b.Y < top || b.Y+b.Height > bottom {
			t.Fatalf("block %d on page %d spans %v..%v outside %v..%v", i, pageIndex+1, b.Y, b.Y+b.Height, top, bottom)
		}
	}
	if pageIndex+1 != res.PageCount {
		t.Fatalf("rendered %d pages, layout has %d", pageIndex+1, res.PageCount)
	}
	for _, ps := range res.PageStarts {
		if ps.RemainingSpace < 0 {
			t.Fatalf("negative remaining space: %+v", ps)
		}
	}
}

func TestEngineKeepsBlocksInsideContentArea(t *testing.T) {
	short := smallPage()
	short.PageHeight = 190

	tests := []struct {
		name   string
		cfg    page.Config
		blocks []*doc.Block
		split  bool
	}{
		{
			name:   "continuation then pushed paragraph",
			cfg:    short,
			blocks: []*doc.Block{doc.NewParagraph(words(60)), doc.NewParagraph(words(3))},
			split:  true,
		},
		{
			name: "mixed blocks",
			cfg:  smallPage(),
			blocks: []*doc.Block{
				doc.NewHeading(1, "Quarterly report"),
				doc.NewParagraph(words(17)),
				doc.NewParagraph(words(45)),
				doc.NewHeading(1, "Details"),
				doc.NewParagraph(words(80)),
				doc.NewParagraph(words(4)),
			},
			split: true,
		},
		{
			name:   "whole blocks",
			cfg:    short,
			blocks: []*doc.Block{doc.NewParagraph(words(22)), doc.NewParagraph(words(22)), doc.NewParagraph(words(9))},
			split:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarnessWith(t, tt.cfg, doc.New(tt.blocks...), tt.split)
			for pass := 0; pass < 2; pass++ {
				res, err := h.engine.RunLayout(context.Background())
				if err != nil {
					t.Fatalf("pass %d: %v", pass, err)
				}
				if res.PageCount < 2 {
					t.Fatalf("pass %d: expected several pages, got %d", pass, res.PageCount)
				}
				checkPageGeometry(t, tt.cfg, h.view.Frame(), res)
			}
		})
	}
}
