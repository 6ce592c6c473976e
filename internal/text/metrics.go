package text

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/go-pdf/fpdf"
)

// Measurer returns the advance of every rune of s in font f
type Measurer interface {
	RuneWidths(s string, f Font) []float64
}

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	translate   func(string) string
	measureMu   sync.Mutex
	widthCache  = map[fontKey]map[rune]float64{}
)

type fontKey struct {
	family string
	style  string
	size   float64
}

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Helvetica", "", 12)
	// core fonts are cp1252 encoded
	translate = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// PDFMetrics measures with the core font metrics bundled in fpdf. With the
// "pt" unit a font size given in pixels yields widths in pixels.
type PDFMetrics struct{}

// RuneWidths implements Measurer
func (PDFMetrics) RuneWidths(s string, f Font) []float64 {
	if s == "" {
		return nil
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()

	key := fontKey{family: f.Family, style: f.Style(), size: f.Size}
	if key.family == "" {
		key.family = "Helvetica"
	}
	cache, ok := widthCache[key]
	if !ok {
		cache = map[rune]float64{}
		widthCache[key] = cache
	}
	measurePDF.SetFont(key.family, key.style, key.size)

	out := make([]float64, 0, len(s))
	for _, r := range s {
		w, ok := cache[r]
		if !ok {
			w = measurePDF.GetStringWidth(translate(string(r)))
			cache[r] = w
		}
		out = append(out, w)
	}
	return out
}

// Monospace approximates every rune as 0.6em wide
type Monospace struct{}

// RuneWidths implements Measurer
func (Monospace) RuneWidths(s string, f Font) []float64 {
	var out []float64
	for range s {
		out = append(out, f.Size*0.6)
	}
	return out
}

// Preload loads the core font metrics used for measurement so the first
// layout pass is not measured against missing fonts
func Preload(ctx context.Context) error {
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	for _, family := range []string{"Helvetica", "Times", "Courier"} {
		for _, style := range []string{"", "B", "I", "BI"} {
			if err := ctx.Err(); err != nil {
				return err
			}
			measurePDF.SetFont(family, style, 12)
		}
	}
	if err := measurePDF.Error(); err != nil {
		return fmt.Errorf("load core fonts: %w", err)
	}
	return nil
}
