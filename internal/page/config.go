package page

import (
	"errors"
	"fmt"
)

// Default page geometry in CSS pixels at 96 DPI (A4)
const (
	DefaultPageWidth         = 794
	DefaultPageHeight        = 1123
	DefaultMargin            = 75
	DefaultPageGap           = 40
	DefaultParagraphSpacing  = 10
	DefaultLineHeight        = 24
	DefaultContentHeight     = DefaultPageHeight - 2*DefaultMargin
	DefaultMarginStackHeight = DefaultMargin + DefaultPageGap + DefaultMargin
)

// Config holds the fixed page geometry the engine works against
type Config struct {
	PageWidth        float64 `json:"page_width"`
	PageHeight       float64 `json:"page_height"`
	MarginTop        float64 `json:"margin_top"`
	MarginRight      float64 `json:"margin_right"`
	MarginBottom     float64 `json:"margin_bottom"`
	MarginLeft       float64 `json:"margin_left"`
	PageGap          float64 `json:"page_gap"`
	ParagraphSpacing float64 `json:"paragraph_spacing"`
	// DefaultLineHeight is used for blocks that have no rendered lines yet.
	DefaultLineHeight float64 `json:"default_line_height"`
}

// DefaultConfig returns the A4 geometry used by the editor
func DefaultConfig() Config {
	return Config{
		PageWidth:         DefaultPageWidth,
		PageHeight:        DefaultPageHeight,
		MarginTop:         DefaultMargin,
		MarginRight:       DefaultMargin,
		MarginBottom:      DefaultMargin,
		MarginLeft:        DefaultMargin,
		PageGap:           DefaultPageGap,
		ParagraphSpacing:  DefaultParagraphSpacing,
		DefaultLineHeight: DefaultLineHeight,
	}
}

// ContentHeight is the vertical budget for content on one page
func (c Config) ContentHeight() float64 {
	return c.PageHeight - c.MarginTop - c.MarginBottom
}

// ContentWidth is the horizontal space available for lines
func (c Config) ContentWidth() float64 {
	return c.PageWidth - c.MarginLeft - c.MarginRight
}

// MarginStack is the extra gap rendered before a block that starts a page:
// the previous page's bottom margin, the gap between pages and the next top margin.
func (c Config) MarginStack() float64 {
	return c.MarginBottom + c.PageGap + c.MarginTop
}

// Validate rejects geometry that leaves no room for content
func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return fmt.Errorf("page size %.2fx%.2f must be positive", c.PageWidth, c.PageHeight)
	}
	if c.MarginTop < 0 || c.MarginRight < 0 || c.MarginBottom < 0 || c.MarginLeft < 0 {
		return errors.New("margins must not be negative")
	}
	if c.ContentHeight() <= 0 {
		return fmt.Errorf("content height %.2f must be positive", c.ContentHeight())
	}
	if c.ContentWidth() <= 0 {
		return fmt.Errorf("content width %.2f must be positive", c.ContentWidth())
	}
	if c.PageGap < 0 || c.ParagraphSpacing < 0 {
		return errors.New("page gap and paragraph spacing must not be negative")
	}
	if c.DefaultLineHeight <= 0 {
		return errors.New("default line height must be positive")
	}
	return nil
}
