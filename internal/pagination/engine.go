// Package pagination computes page breaks for a flowing document and
// proposes the mid-block splits that realize them.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/editor"
	"github.com/gompdf/pageflow/internal/page"
)

// ErrNotReady is returned when the rendered view does not match the document
var ErrNotReady = errors.New("document not rendered yet")

// Options represents options for the pagination engine
type Options struct {
	Config page.Config
	// SplitBlocks enables splitting blocks at line boundaries. When false
	// whole blocks are pushed to the next page.
	SplitBlocks bool
}

// DefaultOptions returns the A4 geometry with block splitting enabled
func DefaultOptions() Options {
	return Options{Config: page.DefaultConfig(), SplitBlocks: true}
}

// Engine runs layout passes against an editor and its rendered view
type Engine struct {
	options  Options
	ed       Dispatcher
	snapshot SnapshotFunc
	newID    IDFunc
	log      *slog.Logger

	pageCount atomic.Int64
	last      atomic.Pointer[page.LayoutResult]
}

// NewEngine creates a pagination engine
func NewEngine(ed Dispatcher, snapshot SnapshotFunc, logger *slog.Logger) *Engine {
	e := &Engine{
		options:  DefaultOptions(),
		ed:       ed,
		snapshot: snapshot,
		newID:    NewSplitID,
		log:      logger,
	}
	e.pageCount.Store(1)
	return e
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// SetIDFunc replaces the continuation identifier generator
func (e *Engine) SetIDFunc(f IDFunc) {
	e.newID = f
}

// PageCount returns the page count of the last completed pass
func (e *Engine) PageCount() int {
	return int(e.pageCount.Load())
}

// LastLayout returns the result of the last completed pass
func (e *Engine) LastLayout() page.LayoutResult {
	if r := e.last.Load(); r != nil {
		return *r
	}
	return page.SinglePage()
}

// Run is the scheduler entry point; it lays out the editor's current
// document. A pass abandoned because the view is not ready, or because an
// edit landed while it ran, is not an error: the next trigger retries it.
func (e *Engine) Run(ctx context.Context, _ *doc.Doc) error {
	_, err := e.RunLayout(ctx)
	if errors.Is(err, ErrNotReady) || errors.Is(err, editor.ErrStaleTransaction) {
		e.debug("layout pass abandoned", "reason", err)
		return nil
	}
	return err
}

// RunLayout performs one full pass: merge stale fragments, measure, paginate,
// resolve and apply splits, and dispatch the new layout.
func (e *Engine) RunLayout(ctx context.Context) (page.LayoutResult, error) {
	if err := ctx.Err(); err != nil {
		return page.LayoutResult{}, err
	}
	cfg := e.options.Config

	if merged, err := MergeSplitFragments(e.ed); err != nil {
		return page.LayoutResult{}, err
	} else if merged {
		e.debug("merged split fragments")
	}

	d, sub := e.snapshot()
	if d != e.ed.Doc() {
		return page.LayoutResult{}, fmt.Errorf("%w: view is behind the editor", ErrNotReady)
	}
	ms := Measure(d, sub)
	if len(ms) != d.ChildCount() {
		return page.LayoutResult{}, fmt.Errorf("%w: measured %d of %d blocks", ErrNotReady, len(ms), d.ChildCount())
	}

	var res page.LayoutResult
	if e.options.SplitBlocks {
		entries := ComputePageEntries(ms, cfg.ContentHeight(), cfg.ParagraphSpacing, cfg.MarginStack())
		resolved := ResolveSplitPositions(entries, Index(ms), sub)
		r, applied, err := ApplySplits(e.ed, d, entries, cfg.MarginStack(), e.newID)
		if err != nil {
			return page.LayoutResult{}, err
		}
		e.debug("layout pass", "blocks", len(ms), "entries", len(entries), "resolved", resolved, "applied", applied, "pages", r.PageCount)
		res = r
	} else {
		res = ComputeLayout(ms, cfg.ContentHeight(), cfg.ParagraphSpacing)
		tr := doc.NewTransaction(d).SetLayout(res).MarkLayoutInternal()
		if err := e.ed.Dispatch(tr); err != nil {
			return page.LayoutResult{}, fmt.Errorf("dispatch layout: %w", err)
		}
		e.debug("layout pass", "blocks", len(ms), "pages", res.PageCount)
	}

	e.pageCount.Store(int64(res.PageCount))
	e.last.Store(&res)
	return res, nil
}

// Attach forwards every user edit that changes the document to t. Layout
// transactions and transactions that leave the document unchanged are ignored.
func (e *Engine) Attach(ed *editor.Editor, t Trigger) (detach func()) {
	return ed.Subscribe(func(ev editor.TransactionEvent) {
		if ev.Tr.IsLayoutInternal() || !ev.DocChanged {
			return
		}
		t.Request(ev.After)
	})
}

func (e *Engine) debug(msg string, args ...any) {
	if e.log != nil {
		e.log.Debug(msg, args...)
	}
}
