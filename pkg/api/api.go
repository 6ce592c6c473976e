package api

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/editor"
	"github.com/gompdf/pageflow/internal/logging"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/scheduler"
	"github.com/gompdf/pageflow/internal/store"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
	"github.com/gompdf/pageflow/internal/view"
)

var baseLogger = func() *slog.Logger { return logging.New("") }

// Session is an editable document that keeps itself paginated. Edits
// schedule a debounced layout pass; Flush waits for it.
type Session struct {
	options Options
	log     *slog.Logger

	ed     *editor.Editor
	view   *view.View
	engine *pagination.Engine
	sched  *scheduler.Scheduler
	detach []func()
}

// NewSession creates a session on d. A nil document starts empty.
func NewSession(d *doc.Doc, opts ...Option) (*Session, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Debug {
		logging.SetDebug(true)
	}
	// components tag themselves, so the base logger carries no component
	logger := options.Logger
	if logger == nil {
		logger = baseLogger()
	}

	cfg := options.PageConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page geometry: %w", err)
	}

	sheets := make([]*style.Stylesheet, 0, len(options.Stylesheets))
	for i, css := range options.Stylesheets {
		sheet, err := style.ParseString(css)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stylesheet %d: %w", i, err)
		}
		sheets = append(sheets, sheet)
	}

	var metrics text.Measurer = text.PDFMetrics{}
	if options.Monospace {
		metrics = text.Monospace{}
	}

	s := &Session{options: options, log: logger.With("component", "session")}
	s.ed = editor.New(d, editor.WithMarginStack(cfg.MarginStack()), editor.WithLogger(logger.With("component", "editor")))
	s.view = view.New(cfg, style.NewResolver(sheets...), metrics, logger.With("component", "view"))
	s.detach = append(s.detach, s.view.Attach(s.ed))

	s.engine = pagination.NewEngine(s.ed, s.snapshot, logger.With("component", "pagination"))
	s.engine.SetOptions(pagination.Options{Config: cfg, SplitBlocks: options.SplitBlocks})

	schedOpts := []scheduler.Option{
		scheduler.WithDebounce(options.Debounce),
		scheduler.WithLogger(logger.With("component", "scheduler")),
	}
	if !options.Monospace {
		schedOpts = append(schedOpts, scheduler.WithReadiness(text.Preload))
	}
	s.sched = scheduler.New(s.engine.Run, schedOpts...)
	s.detach = append(s.detach, s.engine.Attach(s.ed, s.sched))

	s.sched.Request(s.ed.Doc())
	return s, nil
}

// snapshot returns the rendered frame together with the document it shows
func (s *Session) snapshot() (*doc.Doc, pagination.Substrate) {
	f := s.view.Frame()
	return f.Doc(), f
}

// FromHTML creates a session from HTML content. Inline stylesheets of the
// document are applied.
func FromHTML(content string, opts ...Option) (*Session, error) {
	return fromHTML(context.Background(), content, res.NewLoader(""), opts)
}

// FromJSON creates a session from the editor's JSON content
func FromJSON(data []byte, opts ...Option) (*Session, error) {
	d, err := doc.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return NewSession(d, opts...)
}

// Open loads an HTML or JSON document from a file path or URL
func Open(ctx context.Context, source string, opts ...Option) (*Session, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	loader := res.NewLoader(source)
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}

	r, err := loader.LoadDocument(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if r.Type == res.ResourceTypeJSON {
		return FromJSON(r.Data, opts...)
	}
	return fromHTML(ctx, r.GetString(), loader, opts)
}

func fromHTML(ctx context.Context, content string, loader *res.Loader, opts []Option) (*Session, error) {
	d, err := html.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	sources, err := html.Stylesheets(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	parsed := DefaultOptions()
	for _, opt := range opts {
		opt(&parsed)
	}
	logger := parsed.Logger
	if logger == nil {
		logger = baseLogger()
	}
	logger = logger.With("component", "loader")

	var sheets []Option
	for _, src := range sources {
		if src.Text != "" {
			sheets = append(sheets, WithStylesheet(src.Text))
			continue
		}
		r, err := loader.LoadCSS(ctx, src.Href)
		if err != nil {
			logger.Warn("failed to load external stylesheet", "href", src.Href, "error", err)
			continue
		}
		logger.Debug("loaded external stylesheet", "href", src.Href)
		sheets = append(sheets, WithStylesheet(r.GetString()))
	}
	return NewSession(d, append(sheets, opts...)...)
}

// LoadStored opens a document saved in st
func LoadStored(ctx context.Context, st store.Store, id string, opts ...Option) (*Session, error) {
	sd, err := st.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromJSON(sd.Content, opts...)
}

// Save stores the current document. An empty id creates a new stored document.
func (s *Session) Save(ctx context.Context, st store.Store, id, title string) (store.Document, error) {
	data, err := s.JSON()
	if err != nil {
		return store.Document{}, err
	}
	return st.Save(ctx, store.Document{ID: id, Title: title, Content: data})
}

// Options returns the session options
func (s *Session) Options() Options {
	return s.options
}

// Doc returns the current document
func (s *Session) Doc() *doc.Doc {
	return s.ed.Doc()
}

// Editor returns the underlying editor
func (s *Session) Editor() *editor.Editor {
	return s.ed
}

// PageCount returns the page count of the last completed layout pass
func (s *Session) PageCount() int {
	return s.engine.PageCount()
}

// Layout returns the layout the editor currently shows
func (s *Session) Layout() page.LayoutResult {
	return s.ed.Layout()
}

// Flush runs any pending layout pass and waits for it
func (s *Session) Flush(ctx context.Context) error {
	return s.sched.Flush(ctx)
}

// InsertText inserts plain text at pos
func (s *Session) InsertText(pos int, t string) error {
	return s.ed.InsertText(pos, t, 0)
}

// Delete removes the content between from and to
func (s *Session) Delete(from, to int) error {
	return s.ed.Delete(from, to)
}

// SplitBlock starts a new paragraph at pos
func (s *Session) SplitBlock(pos int) error {
	return s.ed.SplitBlock(pos)
}

// SetContent replaces the document
func (s *Session) SetContent(d *doc.Doc) error {
	return s.ed.SetContent(d)
}

// Undo reverts the last edit
func (s *Session) Undo() (bool, error) {
	return s.ed.Undo()
}

// Redo reapplies the last undone edit
func (s *Session) Redo() (bool, error) {
	return s.ed.Redo()
}

// HTML renders the current document, split fragments included
func (s *Session) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, s.ed.Doc()); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// JSON encodes the current document as editor JSON content
func (s *Session) JSON() ([]byte, error) {
	return s.ed.Doc().MarshalJSON()
}

// PageSummary describes one page of the current layout
type PageSummary struct {
	Number         int
	StartPos       int
	RemainingSpace float64
	Blocks         int
	Preview        string
}

// Pages summarizes the pages of the current layout
func (s *Session) Pages() []PageSummary {
	d := s.ed.Doc()
	layout := s.ed.Layout()
	pages := []PageSummary{{Number: 1}}
	for _, ps := range layout.PageStarts {
		prev := &pages[len(pages)-1]
		prev.RemainingSpace = ps.RemainingSpace
		pages = append(pages, PageSummary{Number: ps.PageNumber, StartPos: ps.Pos})
	}

	next := 1
	d.ForEach(func(b *doc.Block, pos, _ int) {
		for next < len(pages) && pos >= pages[next].StartPos {
			next++
		}
		p := &pages[next-1]
		p.Blocks++
		if p.Preview == "" {
			p.Preview = preview(b.Text(), 40)
		}
	})
	return pages
}

func preview(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// Close stops the scheduler and detaches from the editor
func (s *Session) Close() {
	s.sched.Close()
	for i := len(s.detach) - 1; i >= 0; i-- {
		s.detach[i]()
	}
	s.detach = nil
}
