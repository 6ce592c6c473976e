// Package editor is the editing surface the pagination engine observes and
// mutates. All mutations go through transactions; user transactions are
// recorded for undo, layout-internal ones are not.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gompdf/pageflow/internal/decoration"
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
)

// ErrStaleTransaction is returned when a transaction was built on a
// document that is no longer current
var ErrStaleTransaction = errors.New("transaction built on an outdated document")

const defaultHistoryLimit = 100

// TransactionEvent is delivered to listeners after every dispatch
type TransactionEvent struct {
	Tr          *doc.Transaction
	Before      *doc.Doc
	After       *doc.Doc
	DocChanged  bool
	Decorations decoration.Set
	Layout      page.LayoutResult
}

// Listener observes dispatched transactions
type Listener func(TransactionEvent)

// Option configures an editor
type Option func(*Editor)

// WithMarginStack sets the margin stack used for page-start decorations
func WithMarginStack(v float64) Option {
	return func(e *Editor) {
		e.marginStack = v
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.log = l
	}
}

// WithHistoryLimit caps the number of undo steps kept
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		e.historyLimit = n
	}
}

type subscription struct {
	id int
	fn Listener
}

// Editor holds the current document and its decoration state.
// It is safe for concurrent use.
type Editor struct {
	marginStack  float64
	historyLimit int
	log          *slog.Logger

	mu        sync.RWMutex
	doc       *doc.Doc
	plugin    *decoration.Plugin
	undo      []*doc.Doc
	redo      []*doc.Doc
	listeners []subscription
	nextID    int
}

// New creates an editor on d. A nil document starts empty.
func New(d *doc.Doc, opts ...Option) *Editor {
	if d == nil {
		d = doc.New()
	}
	e := &Editor{
		marginStack:  page.DefaultMarginStackHeight,
		historyLimit: defaultHistoryLimit,
		doc:          d,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.plugin = decoration.NewPlugin(e.marginStack, e.log)
	return e
}

// Doc returns the current document
func (e *Editor) Doc() *doc.Doc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// Decorations returns the current page-start decorations
func (e *Editor) Decorations() decoration.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plugin.Decorations()
}

// Layout returns the last accepted layout result
func (e *Editor) Layout() page.LayoutResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plugin.Layout()
}

// Subscribe registers l and returns a function that removes it
func (e *Editor) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.listeners {
			if s.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Dispatch applies a transaction built on the current document
func (e *Editor) Dispatch(tr *doc.Transaction) error {
	e.mu.Lock()
	if tr.Before() != e.doc {
		e.mu.Unlock()
		return ErrStaleTransaction
	}
	ev, listeners, err := e.commit(tr)
	e.mu.Unlock()
	notify(listeners, ev)
	return err
}

// Update builds a transaction on the current document with fn and
// dispatches it atomically
func (e *Editor) Update(fn func(tr *doc.Transaction) error) error {
	e.mu.Lock()
	tr := doc.NewTransaction(e.doc)
	if err := fn(tr); err != nil {
		e.mu.Unlock()
		return err
	}
	ev, listeners, err := e.commit(tr)
	e.mu.Unlock()
	notify(listeners, ev)
	return err
}

// commit applies tr; the caller holds the write lock
func (e *Editor) commit(tr *doc.Transaction) (TransactionEvent, []subscription, error) {
	before := e.doc
	err := e.plugin.Apply(tr)
	if tr.DocChanged() {
		if tr.AddToHistory && !tr.IsLayoutInternal() {
			e.undo = append(e.undo, before)
			if len(e.undo) > e.historyLimit {
				e.undo = e.undo[len(e.undo)-e.historyLimit:]
			}
			e.redo = nil
		}
		e.doc = tr.Doc()
	}
	ev := TransactionEvent{
		Tr:          tr,
		Before:      before,
		After:       e.doc,
		DocChanged:  tr.DocChanged(),
		Decorations: e.plugin.Decorations(),
		Layout:      e.plugin.Layout(),
	}
	listeners := make([]subscription, len(e.listeners))
	copy(listeners, e.listeners)
	return ev, listeners, err
}

func notify(listeners []subscription, ev TransactionEvent) {
	for _, s := range listeners {
		s.fn(ev)
	}
}

// InsertText inserts text with marks at pos
func (e *Editor) InsertText(pos int, text string, marks doc.Marks) error {
	return e.Update(func(tr *doc.Transaction) error {
		return tr.InsertText(pos, text, marks)
	})
}

// Delete removes the content between from and to
func (e *Editor) Delete(from, to int) error {
	return e.Update(func(tr *doc.Transaction) error {
		return tr.Delete(from, to)
	})
}

// SplitBlock starts a new block at pos, like pressing Enter
func (e *Editor) SplitBlock(pos int) error {
	return e.Update(func(tr *doc.Transaction) error {
		return tr.Split(pos, "")
	})
}

// JoinBlocks merges the block starting at pos into its predecessor
func (e *Editor) JoinBlocks(pos int) error {
	return e.Update(func(tr *doc.Transaction) error {
		return tr.Join(pos)
	})
}

// SetContent replaces the whole document
func (e *Editor) SetContent(d *doc.Doc) error {
	return e.Update(func(tr *doc.Transaction) error {
		return tr.Replace(d)
	})
}

// CanUndo reports whether there is an edit to undo
func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.undo) > 0
}

// CanRedo reports whether there is an undone edit to restore
func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.redo) > 0
}

// Undo restores the document before the last user edit
func (e *Editor) Undo() (bool, error) {
	return e.travel(&e.undo, &e.redo)
}

// Redo reapplies the last undone edit
func (e *Editor) Redo() (bool, error) {
	return e.travel(&e.redo, &e.undo)
}

func (e *Editor) travel(from, to *[]*doc.Doc) (bool, error) {
	e.mu.Lock()
	if len(*from) == 0 {
		e.mu.Unlock()
		return false, nil
	}
	target := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, e.doc)

	tr := doc.NewTransaction(e.doc)
	if err := tr.Replace(target); err != nil {
		e.mu.Unlock()
		return false, fmt.Errorf("restore snapshot: %w", err)
	}
	tr.AddToHistory = false
	ev, listeners, err := e.commit(tr)
	e.mu.Unlock()
	notify(listeners, ev)
	return true, err
}
