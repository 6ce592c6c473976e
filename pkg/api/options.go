package api

import (
	"log/slog"
	"time"

	"github.com/gompdf/pageflow/internal/config"
	"github.com/gompdf/pageflow/internal/page"
	"github.com/gompdf/pageflow/internal/scheduler"
)

// Options represents configuration options for a pagination session
type Options struct {
	// Page dimensions in CSS pixels at 96 DPI
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Page margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// PageGap is the visual gap between two pages
	PageGap float64
	// ParagraphSpacing separates blocks; a page break drops it
	ParagraphSpacing float64

	// Debounce is the window in which edits are coalesced into one layout pass
	Debounce time.Duration
	// SplitBlocks splits blocks at line boundaries; when false whole blocks move
	SplitBlocks bool

	Debug bool

	// Monospace measures every rune as 0.6em instead of using core font metrics
	Monospace bool

	// Author stylesheets, applied after the built-in one in order
	Stylesheets []string

	// Resource paths used to find linked stylesheets
	ResourcePaths []string

	Logger *slog.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageWidth:       page.DefaultPageWidth,
		PageHeight:      page.DefaultPageHeight,
		PageOrientation: PageOrientationPortrait,

		MarginTop:    page.DefaultMargin,
		MarginRight:  page.DefaultMargin,
		MarginBottom: page.DefaultMargin,
		MarginLeft:   page.DefaultMargin,

		PageGap:          page.DefaultPageGap,
		ParagraphSpacing: page.DefaultParagraphSpacing,

		Debounce:    scheduler.DefaultDebounce,
		SplitBlocks: true,
	}
}

// PageConfig returns the page geometry, with width and height swapped to
// match the orientation
func (o Options) PageConfig() page.Config {
	w, h := o.PageWidth, o.PageHeight
	switch o.PageOrientation {
	case PageOrientationLandscape:
		if w < h {
			w, h = h, w
		}
	default:
		if w > h {
			w, h = h, w
		}
	}
	return page.Config{
		PageWidth:         w,
		PageHeight:        h,
		MarginTop:         o.MarginTop,
		MarginRight:       o.MarginRight,
		MarginBottom:      o.MarginBottom,
		MarginLeft:        o.MarginLeft,
		PageGap:           o.PageGap,
		ParagraphSpacing:  o.ParagraphSpacing,
		DefaultLineHeight: page.DefaultLineHeight,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithPageGap sets the gap between pages
func WithPageGap(gap float64) Option {
	return func(o *Options) {
		o.PageGap = gap
	}
}

// WithParagraphSpacing sets the space after every block
func WithParagraphSpacing(spacing float64) Option {
	return func(o *Options) {
		o.ParagraphSpacing = spacing
	}
}

// WithDebounce sets the layout debounce window
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		o.Debounce = d
	}
}

// WithSplitBlocks enables or disables splitting blocks across pages
func WithSplitBlocks(split bool) Option {
	return func(o *Options) {
		o.SplitBlocks = split
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithMonospace measures text with fixed-width metrics
func WithMonospace(mono bool) Option {
	return func(o *Options) {
		o.Monospace = mono
	}
}

// WithStylesheet adds an author stylesheet
func WithStylesheet(css string) Option {
	return func(o *Options) {
		o.Stylesheets = append(o.Stylesheets, css)
	}
}

// WithResourcePath adds a path to search for linked stylesheets
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithConfig applies a configuration file
func WithConfig(c config.Config) Option {
	return func(o *Options) {
		o.PageWidth = c.Page.PageWidth
		o.PageHeight = c.Page.PageHeight
		o.MarginTop = c.Page.MarginTop
		o.MarginRight = c.Page.MarginRight
		o.MarginBottom = c.Page.MarginBottom
		o.MarginLeft = c.Page.MarginLeft
		o.PageGap = c.Page.PageGap
		o.ParagraphSpacing = c.Page.ParagraphSpacing
		o.Debounce = c.Debounce()
		o.SplitBlocks = c.SplitBlocks
	}
}

// Standard page sizes in CSS pixels at 96 DPI
const (
	PageSizeA3Width  = 1123
	PageSizeA3Height = 1587
	PageSizeA4Width  = page.DefaultPageWidth
	PageSizeA4Height = page.DefaultPageHeight
	PageSizeA5Width  = 559
	PageSizeA5Height = 794

	// US Letter and Legal
	PageSizeLetterWidth  = 816
	PageSizeLetterHeight = 1056
	PageSizeLegalWidth   = 816
	PageSizeLegalHeight  = 1344
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeA3 sets the page size to A3
func WithPageSizeA3() Option {
	return WithPageSize(PageSizeA3Width, PageSizeA3Height)
}

// WithPageSizeA5 sets the page size to A5
func WithPageSizeA5() Option {
	return WithPageSize(PageSizeA5Width, PageSizeA5Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}
