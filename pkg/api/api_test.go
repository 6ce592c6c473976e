package api

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gompdf/pageflow/internal/config"
	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/logging"
	"github.com/gompdf/pageflow/internal/store"
)

// smallPage fits 10 lines of 3 words each in monospace
func smallPage() []Option {
	return []Option{
		WithPageSize(200, 300),
		WithMargins(20, 20, 20, 20),
		WithPageGap(20),
		WithParagraphSpacing(10),
		WithMonospace(true),
		WithLogger(logging.Discard()),
	}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func newSession(t *testing.T, d *doc.Doc, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(d, append(smallPage(), opts...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return s
}

func TestSessionPaginates(t *testing.T) {
	s := newSession(t, doc.New(doc.NewParagraph(words(60))))

	if s.PageCount() != 2 {
		t.Fatalf("page count: got %d, want 2", s.PageCount())
	}
	if err := s.Layout().Validate(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	out, err := s.HTML()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "data-split-id") != 2 {
		t.Fatalf("expected two fragments in %s", out)
	}

	pages := s.Pages()
	if len(pages) != 2 || pages[0].Blocks != 1 || pages[1].Blocks != 1 {
		t.Fatalf("pages: got %+v", pages)
	}
	if pages[1].StartPos != s.Layout().PageStarts[0].Pos || pages[0].Preview == "" {
		t.Fatalf("page summary: got %+v", pages)
	}
}

func TestSessionRelayoutsAfterEdits(t *testing.T) {
	s := newSession(t, doc.New(doc.NewParagraph(words(6))))
	if s.PageCount() != 1 {
		t.Fatalf("page count: got %d, want 1", s.PageCount())
	}

	if err := s.InsertText(1, words(60)+" "); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.PageCount() < 2 {
		t.Fatalf("page count after insert: got %d", s.PageCount())
	}

	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.PageCount() != 1 || s.Doc().Text() != words(6) {
		t.Fatalf("after undo: %d pages, %q", s.PageCount(), s.Doc().Text())
	}
}

func TestWholeBlockSession(t *testing.T) {
	s := newSession(t, doc.New(doc.NewParagraph(words(24)), doc.NewParagraph(words(24))), WithSplitBlocks(false))
	if s.PageCount() != 2 || s.Doc().ChildCount() != 2 {
		t.Fatalf("got %d pages and %d blocks", s.PageCount(), s.Doc().ChildCount())
	}
}

func TestFromHTMLAppliesInlineStyles(t *testing.T) {
	content := "<style>p { line-height: 48px; }</style><p>" + words(21) + "</p>"

	plain, err := FromHTML("<p>"+words(21)+"</p>", smallPage()...)
	if err != nil {
		t.Fatal(err)
	}
	defer plain.Close()
	styled, err := FromHTML(content, smallPage()...)
	if err != nil {
		t.Fatal(err)
	}
	defer styled.Close()

	for _, s := range []*Session{plain, styled} {
		if err := s.Flush(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if plain.PageCount() != 1 || styled.PageCount() != 2 {
		t.Fatalf("page counts: plain %d styled %d", plain.PageCount(), styled.PageCount())
	}
}

func TestSaveAndLoadStored(t *testing.T) {
	st := store.NewMemoryStore()
	s := newSession(t, doc.New(doc.NewHeading(1, "Report"), doc.NewParagraph(words(60))))
	saved, err := s.Save(context.Background(), st, "", "report")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadStored(context.Background(), st, saved.ID, smallPage()...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer loaded.Close()
	if err := loaded.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if loaded.PageCount() != s.PageCount() || loaded.Doc().Text() != s.Doc().Text() {
		t.Fatalf("loaded session differs: %d vs %d pages", loaded.PageCount(), s.PageCount())
	}
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	WithPageSizeLetter()(&o)
	WithPageOrientation(PageOrientationLandscape)(&o)
	cfg := o.PageConfig()
	if cfg.PageWidth != PageSizeLetterHeight || cfg.PageHeight != PageSizeLetterWidth {
		t.Fatalf("landscape letter: got %vx%v", cfg.PageWidth, cfg.PageHeight)
	}

	def := DefaultOptions().PageConfig()
	if def.ContentHeight() != 973 || def.MarginStack() != 190 {
		t.Fatalf("default geometry: content %v stack %v", def.ContentHeight(), def.MarginStack())
	}

	c := config.Default()
	c.Page.PageGap = 12
	c.SplitBlocks = false
	o = DefaultOptions()
	WithConfig(c)(&o)
	if o.PageGap != 12 || o.SplitBlocks {
		t.Fatalf("config not applied: %+v", o)
	}

	if _, err := NewSession(nil, WithMargins(200, 0, 200, 0), WithPageSize(100, 300), WithLogger(logging.Discard())); err == nil {
		t.Fatal("expected invalid geometry to be rejected")
	}
	if _, err := NewSession(nil, WithStylesheet("p { color: red"), WithLogger(logging.Discard())); err == nil {
		t.Fatal("expected an unbalanced stylesheet to be rejected")
	}
}

func TestSessionLogsOneComponentPerRecord(t *testing.T) {
	var buf bytes.Buffer
	prev := baseLogger
	baseLogger = func() *slog.Logger {
		return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	t.Cleanup(func() { baseLogger = prev })

	opts := append(smallPage()[:5:5], WithStylesheet("p { line-height: 24px; }"))
	s, err := FromHTML(`<link rel="stylesheet" href="missing.css"><p>`+words(60)+`</p>`, opts...)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, "component=pagination") || !strings.Contains(out, "component=loader") {
		t.Fatalf("expected pagination and loader records:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if n := strings.Count(line, "component="); n != 1 {
			t.Fatalf("record has %d component keys: %s", n, line)
		}
	}
}
