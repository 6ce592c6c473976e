package doc

import (
	"errors"
	"testing"
)

func sampleDoc() *Doc {
	return New(
		NewParagraph("hello world"),
		NewBlock(Paragraph, Run{Text: "bold", Marks: Bold}, Run{Text: " plain"}),
		NewHeading(2, "title"),
	)
}

func TestPositions(t *testing.T) {
	d := sampleDoc()
	if got, want := d.Size(), 13+12+7; got != want {
		t.Fatalf("size: got %d, want %d", got, want)
	}

	var starts []int
	d.ForEach(func(_ *Block, pos, _ int) {
		starts = append(starts, pos)
	})
	want := []int{0, 13, 25}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("block %d start: got %d, want %d", i, starts[i], want[i])
		}
		if d.PosOf(i) != want[i] {
			t.Fatalf("PosOf(%d): got %d, want %d", i, d.PosOf(i), want[i])
		}
	}

	if _, idx, ok := d.BlockAt(13); !ok || idx != 1 {
		t.Fatalf("BlockAt(13): got %d %v", idx, ok)
	}
	if _, _, ok := d.BlockAt(14); ok {
		t.Fatal("BlockAt(14) should not find a block start")
	}

	rp, err := d.Resolve(7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rp.Index != 0 || rp.Offset != 6 {
		t.Fatalf("resolve 7: got index %d offset %d", rp.Index, rp.Offset)
	}
	if _, err := d.Resolve(0); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("resolve 0: expected ErrInvalidPosition, got %v", err)
	}
}

func TestCanSplitRejectsEdges(t *testing.T) {
	d := New(NewParagraph("abcd"))
	tests := []struct {
		pos  int
		want bool
	}{
		{pos: 0, want: false},
		{pos: 1, want: false},
		{pos: 2, want: true},
		{pos: 4, want: true},
		{pos: 5, want: false},
		{pos: 6, want: false},
	}
	for _, tt := range tests {
		if got := d.CanSplit(tt.pos); got != tt.want {
			t.Fatalf("CanSplit(%d): got %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestSplitKeepsTextAndSharesID(t *testing.T) {
	d := sampleDoc()
	original := d.Child(1).Text()

	tr := NewTransaction(d)
	// "bold plain" starts at 13; offset 6 is between "bold p" and "lain".
	if err := tr.Split(13+1+6, "frag-1"); err != nil {
		t.Fatalf("split: %v", err)
	}
	nd := tr.Doc()
	if nd.ChildCount() != 4 {
		t.Fatalf("expected 4 blocks, got %d", nd.ChildCount())
	}
	first, second := nd.Child(1), nd.Child(2)
	if got := first.Text() + second.Text(); got != original {
		t.Fatalf("split halves join to %q, want %q", got, original)
	}
	if first.SplitID != "frag-1" || second.SplitID != "frag-1" {
		t.Fatalf("split ids: %q %q", first.SplitID, second.SplitID)
	}
	if nd.Child(0).SplitID != "" || nd.Child(3).SplitID != "" {
		t.Fatal("unrelated blocks must not carry the split id")
	}
	if first.Runs()[0].Marks != Bold {
		t.Fatal("marks should survive a split")
	}
	if d.ChildCount() != 3 {
		t.Fatal("original document must not change")
	}
	if got := tr.Mapping().Map(30, 1); got != 32 {
		t.Fatalf("mapping after split: got %d, want 32", got)
	}
}

func TestBackToFrontSplitsMatchMappedOrder(t *testing.T) {
	d := New(NewParagraph("aaaa bbbb cccc"))
	p1, p2 := 6, 11

	backToFront := NewTransaction(d)
	if err := backToFront.Split(p2, "x"); err != nil {
		t.Fatal(err)
	}
	if err := backToFront.Split(p1, "x"); err != nil {
		t.Fatal(err)
	}

	frontToBack := NewTransaction(d)
	if err := frontToBack.Split(p1, "x"); err != nil {
		t.Fatal(err)
	}
	if err := frontToBack.Split(frontToBack.Mapping().Map(p2, 1), "x"); err != nil {
		t.Fatal(err)
	}

	if !backToFront.Doc().Equal(frontToBack.Doc()) {
		t.Fatalf("documents differ:\n%v\n%v", backToFront.Doc().Blocks(), frontToBack.Doc().Blocks())
	}
	if got := backToFront.Doc().ChildCount(); got != 3 {
		t.Fatalf("expected 3 fragments, got %d", got)
	}
}

func TestJoinAndDeleteAcrossBlocks(t *testing.T) {
	d := New(NewParagraph("abc"), NewParagraph("def"))

	tr := NewTransaction(d)
	if err := tr.Join(5); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := tr.Doc().Text(); got != "abcdef" {
		t.Fatalf("join text: got %q", got)
	}
	if got := tr.Mapping().Map(7, 1); got != 5 {
		t.Fatalf("mapping after join: got %d, want 5", got)
	}

	tr = NewTransaction(d)
	if err := tr.Delete(3, 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := tr.Doc().Text(); got != "abef" {
		t.Fatalf("delete text: got %q", got)
	}
	res := tr.Mapping().MapResult(5, 1)
	if !res.Deleted {
		t.Fatal("position inside deleted range should report deleted")
	}

	if err := NewTransaction(d).Join(0); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("join at 0: expected ErrInvalidPosition, got %v", err)
	}
}

func TestInsertTextAndMapping(t *testing.T) {
	d := New(NewParagraph("ac"), NewParagraph("z"))
	tr := NewTransaction(d)
	if err := tr.InsertText(2, "bb", Italic); err != nil {
		t.Fatalf("insert: %v", err)
	}
	b := tr.Doc().Child(0)
	if b.Text() != "abbc" {
		t.Fatalf("text: %q", b.Text())
	}
	if len(b.Runs()) != 3 || b.Runs()[1].Marks != Italic {
		t.Fatalf("runs: %+v", b.Runs())
	}
	if got := tr.Mapping().Map(2, -1); got != 2 {
		t.Fatalf("assoc -1: got %d", got)
	}
	if got := tr.Mapping().Map(2, 1); got != 4 {
		t.Fatalf("assoc 1: got %d", got)
	}
	if got := tr.Mapping().Map(4, 1); got != 6 {
		t.Fatalf("second block start: got %d", got)
	}
}

func TestSetAttr(t *testing.T) {
	d := sampleDoc()
	tr := NewTransaction(d)
	if err := tr.SetAttr(25, AttrLevel, "3"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	if err := tr.SetAttr(0, AttrSplitID, "abc"); err != nil {
		t.Fatalf("set split id: %v", err)
	}
	if tr.Doc().Child(2).Level != 3 || tr.Doc().Child(0).SplitID != "abc" {
		t.Fatal("attributes not applied")
	}
	if err := tr.SetAttr(0, "color", "red"); !errors.Is(err, ErrUnknownAttr) {
		t.Fatalf("expected ErrUnknownAttr, got %v", err)
	}
	if !tr.DocChanged() {
		t.Fatal("attribute steps change the document")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(
		NewBlock(Paragraph, Run{Text: "one ", Marks: Bold | Italic}, Run{Text: "two"}),
		NewHeading(2, "head"),
	)
	tr := NewTransaction(d)
	if err := tr.SetAttr(0, AttrSplitID, "s1"); err != nil {
		t.Fatal(err)
	}
	data, err := tr.Doc().MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(tr.Doc()) {
		t.Fatalf("round trip mismatch: %s", data)
	}
}

func TestFromJSONRejectsUnknownNodes(t *testing.T) {
	if _, err := FromJSON([]byte(`{"type":"doc","content":[{"type":"table"}]}`)); err == nil {
		t.Fatal("expected error for unsupported block")
	}
	if _, err := FromJSON([]byte(`{"type":"paragraph"}`)); err == nil {
		t.Fatal("expected error for non-doc root")
	}
}
