package doc

import (
	"github.com/gompdf/pageflow/internal/page"
)

// Origin tells listeners who produced a transaction
type Origin int

const (
	// OriginUser marks edits made through the editing surface
	OriginUser Origin = iota
	// OriginLayout marks mutations generated by the pagination engine
	OriginLayout
)

func (o Origin) String() string {
	switch o {
	case OriginLayout:
		return "layout"
	default:
		return "user"
	}
}

// Transaction is an atomic batch of steps applied to one document.
// Steps are applied eagerly so later steps see the positions of earlier ones.
type Transaction struct {
	before  *Doc
	doc     *Doc
	steps   []Step
	mapping Mapping

	// Origin distinguishes user edits from layout-internal mutations.
	Origin Origin
	// AddToHistory is false for mutations the undo stack must not record.
	AddToHistory bool
	// Layout carries a freshly computed page layout, if any.
	Layout *page.LayoutResult
}

// NewTransaction starts a transaction on d
func NewTransaction(d *Doc) *Transaction {
	return &Transaction{before: d, doc: d, AddToHistory: true}
}

// Step applies s. On error the transaction is left unchanged.
func (tr *Transaction) Step(s Step) error {
	nd, sm, err := s.Apply(tr.doc)
	if err != nil {
		return err
	}
	tr.doc = nd
	tr.steps = append(tr.steps, s)
	tr.mapping.Append(sm)
	return nil
}

// InsertText inserts plain or marked text at pos
func (tr *Transaction) InsertText(pos int, text string, marks Marks) error {
	return tr.Step(InsertTextStep{Pos: pos, Text: text, Marks: marks})
}

// Delete removes content between from and to
func (tr *Transaction) Delete(from, to int) error {
	return tr.Step(DeleteStep{From: from, To: to})
}

// Split divides the block at pos, tagging both halves with splitID when set
func (tr *Transaction) Split(pos int, splitID string) error {
	return tr.Step(SplitStep{Pos: pos, SplitID: splitID})
}

// Join merges the block starting at pos into its predecessor
func (tr *Transaction) Join(pos int) error {
	return tr.Step(JoinStep{Pos: pos})
}

// SetAttr changes an attribute of the block starting at pos
func (tr *Transaction) SetAttr(pos int, key, value string) error {
	return tr.Step(SetAttrStep{Pos: pos, Key: key, Value: value})
}

// Replace swaps the whole document
func (tr *Transaction) Replace(d *Doc) error {
	return tr.Step(ReplaceStep{Doc: d})
}

// SetLayout attaches a layout result
func (tr *Transaction) SetLayout(r page.LayoutResult) *Transaction {
	tr.Layout = &r
	return tr
}

// MarkLayoutInternal tags the transaction as produced by the layout engine
// and excludes it from the undo history.
func (tr *Transaction) MarkLayoutInternal() *Transaction {
	tr.Origin = OriginLayout
	tr.AddToHistory = false
	return tr
}

// Before returns the document the transaction started from
func (tr *Transaction) Before() *Doc {
	return tr.before
}

// Doc returns the document after all steps
func (tr *Transaction) Doc() *Doc {
	return tr.doc
}

// Steps returns the applied steps
func (tr *Transaction) Steps() []Step {
	return tr.steps
}

// Mapping returns the position mapping of all steps
func (tr *Transaction) Mapping() *Mapping {
	return &tr.mapping
}

// DocChanged reports whether any step was applied
func (tr *Transaction) DocChanged() bool {
	return len(tr.steps) > 0
}

// IsLayoutInternal reports whether the layout engine produced the transaction
func (tr *Transaction) IsLayoutInternal() bool {
	return tr.Origin == OriginLayout
}
