package pageflow

import (
	"context"

	"github.com/gompdf/pageflow/internal/doc"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/store"
	"github.com/gompdf/pageflow/pkg/api"
)

type Session = api.Session
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type PageSummary = api.PageSummary
type LayoutResult = page.LayoutResult
type Doc = doc.Doc

func NewSession(d *Doc, opts ...Option) (*Session, error) { return api.NewSession(d, opts...) }
func FromHTML(content string, opts ...Option) (*Session, error) {
	return api.FromHTML(content, opts...)
}
func FromJSON(data []byte, opts ...Option) (*Session, error) { return api.FromJSON(data, opts...) }
func Open(ctx context.Context, source string, opts ...Option) (*Session, error) {
	return api.Open(ctx, source, opts...)
}
func LoadStored(ctx context.Context, st store.Store, id string, opts ...Option) (*Session, error) {
	return api.LoadStored(ctx, st, id, opts...)
}
func DefaultOptions() Options { return api.DefaultOptions() }

var (
	WithPageSize         = api.WithPageSize
	WithMargins          = api.WithMargins
	WithPageGap          = api.WithPageGap
	WithParagraphSpacing = api.WithParagraphSpacing
	WithDebounce         = api.WithDebounce
	WithSplitBlocks      = api.WithSplitBlocks
	WithDebug            = api.WithDebug
	WithMonospace        = api.WithMonospace
	WithStylesheet       = api.WithStylesheet
	WithResourcePath     = api.WithResourcePath
	WithLogger           = api.WithLogger
	WithConfig           = api.WithConfig
	WithPageSizeA3       = api.WithPageSizeA3
	WithPageSizeA4       = api.WithPageSizeA4
	WithPageSizeA5       = api.WithPageSizeA5
	WithPageSizeLetter   = api.WithPageSizeLetter
	WithPageSizeLegal    = api.WithPageSizeLegal
	WithPageOrientation  = api.WithPageOrientation
)

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape
)
