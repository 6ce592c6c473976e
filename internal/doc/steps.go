package doc

import (
	"fmt"
	"unicode/utf8"
)

// Range is one replaced region of a step map
type Range struct {
	Start   int
	OldSize int
	NewSize int
}

// StepMap describes how a single step moved positions
type StepMap struct {
	Ranges []Range
}

// MapResult is the outcome of mapping one position
type MapResult struct {
	Pos int
	// Deleted is set when the content around the position was removed.
	Deleted bool
}

// Map translates pos through the step. assoc decides which side an insertion
// at exactly pos lands on: negative keeps pos before it, positive moves pos after it.
func (m StepMap) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult translates pos and reports whether it was inside deleted content
func (m StepMap) MapResult(pos, assoc int) MapResult {
	diff := 0
	for _, r := range m.Ranges {
		start := r.Start
		end := start + r.OldSize
		if pos < start {
			break
		}
		if pos <= end {
			side := assoc
			if r.OldSize > 0 {
				switch pos {
				case start:
					side = -1
				case end:
					side = 1
				}
			}
			res := start + diff
			if side >= 0 {
				res += r.NewSize
			}
			deleted := r.OldSize > 0 && pos > start && pos < end
			return MapResult{Pos: res, Deleted: deleted}
		}
		diff += r.NewSize - r.OldSize
	}
	return MapResult{Pos: pos + diff}
}

// Mapping is an ordered list of step maps
type Mapping struct {
	maps []StepMap
}

// Append adds a step map
func (m *Mapping) Append(sm StepMap) {
	m.maps = append(m.maps, sm)
}

// Len returns the number of step maps
func (m *Mapping) Len() int {
	return len(m.maps)
}

// Map translates pos through every step map in order
func (m *Mapping) Map(pos, assoc int) int {
	return m.MapResult(pos, assoc).Pos
}

// MapResult translates pos and reports whether any step deleted it
func (m *Mapping) MapResult(pos, assoc int) MapResult {
	deleted := false
	for _, sm := range m.maps {
		r := sm.MapResult(pos, assoc)
		pos = r.Pos
		deleted = deleted || r.Deleted
	}
	return MapResult{Pos: pos, Deleted: deleted}
}

// Step is one atomic document change
type Step interface {
	Apply(d *Doc) (*Doc, StepMap, error)
}

// InsertTextStep inserts text with the given marks at a content position
type InsertTextStep struct {
	Pos   int
	Text  string
	Marks Marks
}

func (s InsertTextStep) Apply(d *Doc) (*Doc, StepMap, error) {
	rp, err := d.Resolve(s.Pos)
	if err != nil {
		return nil, StepMap{}, err
	}
	n := utf8.RuneCountInString(s.Text)
	if n == 0 {
		return d, StepMap{}, nil
	}
	b := rp.Block
	runs := append(b.Slice(0, rp.Offset), Run{Text: s.Text, Marks: s.Marks})
	runs = append(runs, b.Slice(rp.Offset, b.Len())...)
	nd := d.replaceBlocks(rp.Index, rp.Index+1, b.derive(runs))
	return nd, StepMap{Ranges: []Range{{Start: s.Pos, NewSize: n}}}, nil
}

// DeleteStep removes the content between two content positions. When the
// range crosses block boundaries the first and last blocks are joined.
type DeleteStep struct {
	From int
	To   int
}

func (s DeleteStep) Apply(d *Doc) (*Doc, StepMap, error) {
	if s.From > s.To {
		return nil, StepMap{}, fmt.Errorf("%w: delete %d..%d", ErrInvalidPosition, s.From, s.To)
	}
	if s.From == s.To {
		return d, StepMap{}, nil
	}
	from, err := d.Resolve(s.From)
	if err != nil {
		return nil, StepMap{}, err
	}
	to, err := d.Resolve(s.To)
	if err != nil {
		return nil, StepMap{}, err
	}
	runs := append(from.Block.Slice(0, from.Offset), to.Block.Slice(to.Offset, to.Block.Len())...)
	nd := d.replaceBlocks(from.Index, to.Index+1, from.Block.derive(runs))
	return nd, StepMap{Ranges: []Range{{Start: s.From, OldSize: s.To - s.From}}}, nil
}

// SplitStep divides the block containing Pos into two blocks. A non-empty
// SplitID is assigned to both halves; otherwise the second half starts
// without a continuation identifier.
type SplitStep struct {
	Pos     int
	SplitID string
}

func (s SplitStep) Apply(d *Doc) (*Doc, StepMap, error) {
	rp, err := d.Resolve(s.Pos)
	if err != nil {
		return nil, StepMap{}, fmt.Errorf("%w: %v", ErrIllegalSplit, err)
	}
	b := rp.Block
	left := b.derive(b.Slice(0, rp.Offset))
	right := b.derive(b.Slice(rp.Offset, b.Len()))
	if s.SplitID != "" {
		left.SplitID = s.SplitID
		right.SplitID = s.SplitID
	} else {
		right.SplitID = ""
	}
	nd := d.replaceBlocks(rp.Index, rp.Index+1, left, right)
	return nd, StepMap{Ranges: []Range{{Start: s.Pos, NewSize: 2}}}, nil
}

// JoinStep merges the block starting at Pos into the block before it.
// The merged block keeps the attributes of the first block.
type JoinStep struct {
	Pos int
}

func (s JoinStep) Apply(d *Doc) (*Doc, StepMap, error) {
	_, idx, ok := d.BlockAt(s.Pos)
	if !ok || idx == 0 {
		return nil, StepMap{}, fmt.Errorf("%w: no block boundary at %d", ErrInvalidPosition, s.Pos)
	}
	first, second := d.blocks[idx-1], d.blocks[idx]
	runs := append(first.Runs(), second.runs...)
	nd := d.replaceBlocks(idx-1, idx+1, first.derive(runs))
	return nd, StepMap{Ranges: []Range{{Start: s.Pos - 1, OldSize: 2}}}, nil
}

// SetAttrStep changes an attribute of the block starting at Pos
type SetAttrStep struct {
	Pos   int
	Key   string
	Value string
}

func (s SetAttrStep) Apply(d *Doc) (*Doc, StepMap, error) {
	b, idx, ok := d.BlockAt(s.Pos)
	if !ok {
		return nil, StepMap{}, fmt.Errorf("%w: no block at %d", ErrInvalidPosition, s.Pos)
	}
	nb, err := b.WithAttr(s.Key, s.Value)
	if err != nil {
		return nil, StepMap{}, err
	}
	return d.replaceBlocks(idx, idx+1, nb), StepMap{}, nil
}

// ReplaceStep swaps the whole document content
type ReplaceStep struct {
	Doc *Doc
}

func (s ReplaceStep) Apply(d *Doc) (*Doc, StepMap, error) {
	nd := s.Doc
	if nd == nil {
		nd = New()
	}
	return nd, StepMap{Ranges: []Range{{Start: 0, OldSize: d.Size(), NewSize: nd.Size()}}}, nil
}
