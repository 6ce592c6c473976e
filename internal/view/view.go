// Package view renders documents into deterministic block and line boxes.
// It stands in for a browser DOM: it exposes the same geometry reads the
// pagination engine performs on a live page.
package view

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gompdf/pageflow/internal/decoration"
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/editor"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
)

// View keeps a rendered frame of the current document
type View struct {
	cfg     page.Config
	styles  *style.Resolver
	metrics text.Measurer
	log     *slog.Logger

	mu    sync.RWMutex
	frame *Frame
}

// New creates a view. A nil resolver uses the default styles and a nil
// measurer uses the core PDF font metrics.
func New(cfg page.Config, styles *style.Resolver, metrics text.Measurer, logger *slog.Logger) *View {
	if styles == nil {
		styles = style.NewResolver()
	}
	if metrics == nil {
		metrics = text.PDFMetrics{}
	}
	v := &View{cfg: cfg, styles: styles, metrics: metrics, log: logger}
	v.frame = v.layout(doc.New(), decoration.Set{})
	return v
}

// Update renders d with decos and makes it the current frame
func (v *View) Update(d *doc.Doc, decos decoration.Set) *Frame {
	f := v.layout(d, decos)
	v.mu.Lock()
	v.frame = f
	v.mu.Unlock()
	if v.log != nil {
		v.log.Debug("rendered frame", "blocks", len(f.boxes), "height", f.height, "decorations", decos.Len())
	}
	return f
}

// Frame returns the current frame
func (v *View) Frame() *Frame {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

// Attach renders the editor's document now and after every transaction
func (v *View) Attach(ed *editor.Editor) (detach func()) {
	v.Update(ed.Doc(), ed.Decorations())
	return ed.Subscribe(func(ev editor.TransactionEvent) {
		v.Update(ev.After, ev.Decorations)
	})
}

// layout stacks the blocks of d top to bottom starting at the first page's
// top margin. Paragraph spacing separates blocks; a decorated block starts a
// page, so its margin replaces the spacing above it.
func (v *View) layout(d *doc.Doc, decos decoration.Set) *Frame {
	f := &Frame{doc: d, byPos: make(map[int]*BlockBox, d.ChildCount())}
	width := v.cfg.ContentWidth()
	y := v.cfg.MarginTop

	d.ForEach(func(b *doc.Block, pos, index int) {
		cs := v.styles.Block(b)
		box := &BlockBox{
			Index:         index,
			Pos:           pos,
			Block:         b,
			X:             v.cfg.MarginLeft,
			Width:         width,
			PaddingTop:    cs.PaddingTop,
			PaddingBottom: cs.PaddingBottom,
			LineHeight:    cs.LineHeight,
		}
		if box.LineHeight <= 0 {
			box.LineHeight = v.cfg.DefaultLineHeight
		}
		if index > 0 {
			y += v.cfg.ParagraphSpacing
		}
		if dec, ok := decos.At(pos); ok && index > 0 {
			box.MarginTop = dec.MarginTop
			y += box.MarginTop - v.cfg.ParagraphSpacing
		}
		box.Y = y

		var spans []text.Span
		for _, r := range b.Runs() {
			spans = append(spans, text.Span{Text: r.Text, Font: v.styles.Run(b, r.Marks).Font()})
		}
		lineY := y + box.PaddingTop
		for _, l := range text.Wrap(spans, width, v.metrics) {
			box.Lines = append(box.Lines, LineBox{
				Rect: page.Rect{X: box.X, Y: lineY, Width: l.Width, Height: box.LineHeight},
				Line: l,
			})
			lineY += box.LineHeight
		}
		content := lineY - y - box.PaddingTop
		if len(box.Lines) == 0 {
			content = box.LineHeight
		}
		box.Height = box.PaddingTop + content + box.PaddingBottom

		f.boxes = append(f.boxes, box)
		f.byPos[pos] = box
		y += box.Height
	})
	if d.ChildCount() > 0 {
		y += v.cfg.ParagraphSpacing
	}
	f.height = y
	return f
}

// Frame is an immutable rendering of one document
type Frame struct {
	doc    *doc.Doc
	boxes  []*BlockBox
	byPos  map[int]*BlockBox
	height float64
}

// Doc returns the rendered document
func (f *Frame) Doc() *doc.Doc {
	return f.doc
}

// Boxes returns the block boxes in document order
func (f *Frame) Boxes() []*BlockBox {
	return f.boxes
}

// Height returns the bottom of the last block including its spacing
func (f *Frame) Height() float64 {
	return f.height
}

// ElementAt returns the box of the block starting at pos
func (f *Frame) ElementAt(pos int) (page.Element, bool) {
	b, ok := f.byPos[pos]
	if !ok {
		return nil, false
	}
	return b, true
}

// boxAt returns the box whose vertical extent holds y
func (f *Frame) boxAt(y float64) (*BlockBox, bool) {
	i := sort.Search(len(f.boxes), func(i int) bool { return f.boxes[i].Bottom() > y })
	if i == len(f.boxes) || f.boxes[i].Y > y {
		return nil, false
	}
	return f.boxes[i], true
}

// PosAtCoords returns the document position nearest to a point
func (f *Frame) PosAtCoords(x, y float64) (int, bool) {
	c, ok := f.CaretFromPoint(x, y)
	if !ok {
		return 0, false
	}
	return f.PosFromCaret(c)
}

// CaretFromPoint returns the caret under a point
func (f *Frame) CaretFromPoint(x, y float64) (page.Caret, bool) {
	b, ok := f.boxAt(y)
	if !ok {
		return page.Caret{}, false
	}
	return page.Caret{Block: b.Index, Offset: b.offsetAt(x, y)}, true
}

// PosFromCaret converts a caret to a document position
func (f *Frame) PosFromCaret(c page.Caret) (int, bool) {
	if c.Block < 0 || c.Block >= len(f.boxes) {
		return 0, false
	}
	b := f.boxes[c.Block]
	if c.Offset < 0 || c.Offset > b.Block.Len() {
		return 0, false
	}
	return b.Pos + 1 + c.Offset, true
}
