// Package doc is the document model the editor mutates and the pagination
// engine reads. A document is an immutable sequence of top-level text blocks;
// every change produces a new *Doc so callers can compare documents by pointer.
//
// Positions follow the usual rich-text editor convention: each block occupies
// NodeSize() = Len()+2 positions (an opening token, its characters, a closing
// token). The block at offset o holds its text between o+1 and o+1+Len().
package doc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidPosition is returned for positions outside any block's content
	ErrInvalidPosition = errors.New("invalid document position")
	// ErrIllegalSplit is returned when a block cannot be split at a position
	ErrIllegalSplit = errors.New("illegal split position")
	// ErrUnknownAttr is returned by attribute steps for unsupported keys
	ErrUnknownAttr = errors.New("unknown block attribute")
)

// Attribute keys understood by SetAttr
const (
	AttrSplitID = "splitId"
	AttrLevel   = "level"
)

// Marks is a set of inline formatting flags
type Marks uint8

const (
	Bold Marks = 1 << iota
	Italic
	Underline
	Code
)

var markNames = []struct {
	mark Marks
	name string
}{
	{Bold, "bold"},
	{Italic, "italic"},
	{Underline, "underline"},
	{Code, "code"},
}

// Has reports whether all marks in o are set
func (m Marks) Has(o Marks) bool {
	return m&o == o
}

// Names returns the mark names in a stable order
func (m Marks) Names() []string {
	var names []string
	for _, mn := range markNames {
		if m.Has(mn.mark) {
			names = append(names, mn.name)
		}
	}
	return names
}

// ParseMark maps a mark name to its flag
func ParseMark(name string) (Marks, bool) {
	for _, mn := range markNames {
		if mn.name == name {
			return mn.mark, true
		}
	}
	return 0, false
}

// Run is a span of text sharing the same marks
type Run struct {
	Text  string `json:"text"`
	Marks Marks  `json:"marks"`
}

// BlockType names the kind of a top-level block
type BlockType string

const (
	Paragraph BlockType = "paragraph"
	Heading   BlockType = "heading"
)

// Block is a top-level text block. Blocks are never modified after construction.
type Block struct {
	Type  BlockType
	Level int
	// SplitID is shared by the fragments of a block split across pages.
	SplitID string

	runs   []Run
	length int
}

// NewBlock creates a block of the given type from runs
func NewBlock(t BlockType, runs ...Run) *Block {
	b := &Block{Type: t}
	if t == Heading {
		b.Level = 1
	}
	b.setRuns(runs)
	return b
}

// NewParagraph creates a plain paragraph
func NewParagraph(text string) *Block {
	return NewBlock(Paragraph, Run{Text: text})
}

// NewHeading creates a plain heading of the given level
func NewHeading(level int, text string) *Block {
	b := NewBlock(Heading, Run{Text: text})
	b.Level = clampLevel(level)
	return b
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func (b *Block) setRuns(runs []Run) {
	b.runs = normalizeRuns(runs)
	b.length = 0
	for _, r := range b.runs {
		b.length += utf8.RuneCountInString(r.Text)
	}
}

// Runs returns a copy of the block's runs
func (b *Block) Runs() []Run {
	out := make([]Run, len(b.runs))
	copy(out, b.runs)
	return out
}

// Len returns the number of characters in the block
func (b *Block) Len() int {
	return b.length
}

// NodeSize returns the number of positions the block occupies
func (b *Block) NodeSize() int {
	return b.length + 2
}

// Text returns the block's plain text
func (b *Block) Text() string {
	var sb strings.Builder
	for _, r := range b.runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Slice returns the runs covering characters [from, to)
func (b *Block) Slice(from, to int) []Run {
	return sliceRuns(b.runs, from, to)
}

// derive copies the block's attributes onto a block with new runs
func (b *Block) derive(runs []Run) *Block {
	nb := &Block{Type: b.Type, Level: b.Level, SplitID: b.SplitID}
	nb.setRuns(runs)
	return nb
}

// WithAttr returns a copy of the block with one attribute changed
func (b *Block) WithAttr(key, value string) (*Block, error) {
	nb := b.derive(b.runs)
	switch key {
	case AttrSplitID:
		nb.SplitID = value
	case AttrLevel:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("level %q: %w", value, err)
		}
		nb.Level = clampLevel(n)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttr, key)
	}
	return nb, nil
}

func (b *Block) String() string {
	if b.SplitID != "" {
		return fmt.Sprintf("%s[%s]%q", b.Type, b.SplitID, b.Text())
	}
	return fmt.Sprintf("%s%q", b.Type, b.Text())
}

// normalizeRuns drops empty runs and merges neighbours with equal marks
func normalizeRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Marks == r.Marks {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// sliceRuns cuts runs to the character range [from, to)
func sliceRuns(runs []Run, from, to int) []Run {
	var out []Run
	offset := 0
	for _, r := range runs {
		n := utf8.RuneCountInString(r.Text)
		start, end := offset, offset+n
		offset = end
		if end <= from || start >= to {
			continue
		}
		lo := max(from, start) - start
		hi := min(to, end) - start
		out = append(out, Run{Text: runeSlice(r.Text, lo, hi), Marks: r.Marks})
	}
	return out
}

func runeSlice(s string, lo, hi int) string {
	r := []rune(s)
	return string(r[lo:hi])
}

// Doc is an immutable ordered list of blocks
type Doc struct {
	blocks []*Block
	size   int
}

// New creates a document. An empty document holds one empty paragraph.
func New(blocks ...*Block) *Doc {
	if len(blocks) == 0 {
		blocks = []*Block{NewParagraph("")}
	}
	d := &Doc{blocks: make([]*Block, len(blocks))}
	copy(d.blocks, blocks)
	for _, b := range d.blocks {
		d.size += b.NodeSize()
	}
	return d
}

// FromText creates a document with one paragraph per line of text
func FromText(text string) *Doc {
	lines := strings.Split(text, "\n")
	blocks := make([]*Block, 0, len(lines))
	for _, l := range lines {
		blocks = append(blocks, NewParagraph(l))
	}
	return New(blocks...)
}

// ChildCount returns the number of top-level blocks
func (d *Doc) ChildCount() int {
	return len(d.blocks)
}

// Child returns the block at index i
func (d *Doc) Child(i int) *Block {
	return d.blocks[i]
}

// Blocks returns a copy of the block list
func (d *Doc) Blocks() []*Block {
	out := make([]*Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// Size returns the number of positions in the document
func (d *Doc) Size() int {
	return d.size
}

// ForEach calls fn for each block with its start position and index
func (d *Doc) ForEach(fn func(b *Block, pos, index int)) {
	pos := 0
	for i, b := range d.blocks {
		fn(b, pos, i)
		pos += b.NodeSize()
	}
}

// PosOf returns the start position of the block at index i
func (d *Doc) PosOf(i int) int {
	pos := 0
	for j := 0; j < i && j < len(d.blocks); j++ {
		pos += d.blocks[j].NodeSize()
	}
	return pos
}

// BlockAt returns the block that starts exactly at pos
func (d *Doc) BlockAt(pos int) (*Block, int, bool) {
	offset := 0
	for i, b := range d.blocks {
		if offset == pos {
			return b, i, true
		}
		if offset > pos {
			break
		}
		offset += b.NodeSize()
	}
	return nil, -1, false
}

// ResolvedPos locates a position inside a block's content
type ResolvedPos struct {
	Pos        int
	Index      int
	BlockStart int
	// Offset is the character offset inside the block.
	Offset int
	Block  *Block
}

// Resolve maps a content position to its block
func (d *Doc) Resolve(pos int) (ResolvedPos, error) {
	start := 0
	for i, b := range d.blocks {
		if pos > start && pos <= start+1+b.Len() {
			return ResolvedPos{Pos: pos, Index: i, BlockStart: start, Offset: pos - start - 1, Block: b}, nil
		}
		start += b.NodeSize()
	}
	return ResolvedPos{}, fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
}

// CanSplit reports whether pos lies strictly inside a block's text, so that
// splitting there yields two non-empty blocks.
func (d *Doc) CanSplit(pos int) bool {
	rp, err := d.Resolve(pos)
	if err != nil {
		return false
	}
	return rp.Offset > 0 && rp.Offset < rp.Block.Len()
}

// Text returns the plain text of the document, one line per block
func (d *Doc) Text() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n")
}

// Equal reports whether two documents have the same content and attributes
func (d *Doc) Equal(o *Doc) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || len(d.blocks) != len(o.blocks) {
		return false
	}
	for i, b := range d.blocks {
		ob := o.blocks[i]
		if b.Type != ob.Type || b.Level != ob.Level || b.SplitID != ob.SplitID || len(b.runs) != len(ob.runs) {
			return false
		}
		for j := range b.runs {
			if b.runs[j] != ob.runs[j] {
				return false
			}
		}
	}
	return true
}

// replaceBlocks returns a new document where blocks [from, to) are replaced
func (d *Doc) replaceBlocks(from, to int, repl ...*Block) *Doc {
	blocks := make([]*Block, 0, len(d.blocks)-(to-from)+len(repl))
	blocks = append(blocks, d.blocks[:from]...)
	blocks = append(blocks, repl...)
	blocks = append(blocks, d.blocks[to:]...)
	return New(blocks...)
}
