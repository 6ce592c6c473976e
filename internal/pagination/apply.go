package pagination

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
)

// IDFunc generates continuation identifiers
type IDFunc func() string

// NewSplitID returns a random UUID
func NewSplitID() string {
	return uuid.NewString()
}

type pendingSplit struct {
	split *page.Split
	pos   int
}

// ApplySplits materializes the resolved splits of entries on d in one
// layout-internal transaction together with the resulting layout. Splits are
// applied back to front so earlier offsets stay valid; a split that is not
// strictly inside its source block is skipped. All fragments of one source
// block share one identifier.
func ApplySplits(ed Dispatcher, d *doc.Doc, entries []page.PageEntry, marginStack float64, newID IDFunc) (page.LayoutResult, int, error) {
	if newID == nil {
		newID = NewSplitID
	}
	var pending []pendingSplit
	for _, e := range entries {
		if e.Split.Resolved() {
			pending = append(pending, pendingSplit{split: e.Split, pos: *e.Split.ResolvedPos})
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].pos > pending[j].pos })

	tr := doc.NewTransaction(d)
	applied := make(map[*page.Split]bool, len(pending))
	ids := map[int]string{}
	last := -1
	for _, p := range pending {
		if p.pos == last || !legalSplit(d, p.split.SourcePos, p.pos) {
			continue
		}
		id, ok := ids[p.split.SourcePos]
		if !ok {
			id = newID()
			ids[p.split.SourcePos] = id
		}
		if err := tr.Split(p.pos, id); err != nil {
			continue
		}
		applied[p.split] = true
		last = p.pos
	}

	res := BuildLayoutResult(tr.Doc(), entries, applied, marginStack)
	tr.SetLayout(res).MarkLayoutInternal()
	if err := ed.Dispatch(tr); err != nil {
		return page.LayoutResult{}, 0, fmt.Errorf("dispatch layout: %w", err)
	}
	return res, len(applied), nil
}

// legalSplit reports whether pos lies strictly inside the block starting at sourcePos
func legalSplit(d *doc.Doc, sourcePos, pos int) bool {
	if !d.CanSplit(pos) {
		return false
	}
	rp, err := d.Resolve(pos)
	return err == nil && rp.BlockStart == sourcePos
}

// BuildLayoutResult walks the post-split document in lockstep with the
// entries. An entry opens a new block when its source changes or when the
// previous entry's split was applied; a decorated entry that opens a block
// records a page start. Decorations inside a block whose split was dropped
// are not materialized.
func BuildLayoutResult(post *doc.Doc, entries []page.PageEntry, applied map[*page.Split]bool, marginStack float64) page.LayoutResult {
	res := page.SinglePage()
	positions := make([]int, 0, post.ChildCount())
	post.ForEach(func(_ *doc.Block, pos, _ int) {
		positions = append(positions, pos)
	})

	block := -1
	for i, e := range entries {
		opens := i == 0 || e.SourceIndex != entries[i-1].SourceIndex || applied[entries[i-1].Split]
		if !opens {
			continue
		}
		block++
		if block >= len(positions) {
			break
		}
		if e.Decoration == nil {
			continue
		}
		res.PageStarts = append(res.PageStarts, page.PageStart{
			Pos:            positions[block],
			PageNumber:     res.PageCount + 1,
			RemainingSpace: e.Decoration.MarginTop - marginStack,
		})
		res.PageCount++
	}
	return res
}

// MergeSplitFragments joins adjacent blocks sharing a continuation
// identifier back into one block and clears the identifier, so a pass
// paginates logical blocks. It dispatches one layout-internal transaction
// and reports whether anything was merged.
func MergeSplitFragments(ed Dispatcher) (bool, error) {
	d := ed.Doc()
	type frag struct {
		pos int
		id  string
	}
	var frags []frag
	d.ForEach(func(b *doc.Block, pos, _ int) {
		frags = append(frags, frag{pos: pos, id: b.SplitID})
	})

	tr := doc.NewTransaction(d)
	merged := map[string]bool{}
	for i := len(frags) - 1; i > 0; i-- {
		if frags[i].id == "" || frags[i].id != frags[i-1].id {
			continue
		}
		if err := tr.Join(frags[i].pos); err != nil {
			return false, fmt.Errorf("join fragment at %d: %w", frags[i].pos, err)
		}
		merged[frags[i].id] = true
	}
	if len(merged) == 0 {
		return false, nil
	}

	var clear []int
	tr.Doc().ForEach(func(b *doc.Block, pos, _ int) {
		if merged[b.SplitID] {
			clear = append(clear, pos)
		}
	})
	for _, pos := range clear {
		if err := tr.SetAttr(pos, doc.AttrSplitID, ""); err != nil {
			return false, err
		}
	}
	tr.MarkLayoutInternal()
	if err := ed.Dispatch(tr); err != nil {
		return false, fmt.Errorf("dispatch merge: %w", err)
	}
	return true, nil
}
