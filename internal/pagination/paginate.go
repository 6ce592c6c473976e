package pagination

import (
	"github.com/gompdf/pageflow/internal/page"
)

// ComputePageEntries packs measured blocks into pages of height budget.
// Blocks that do not fit the space left on a page are split after the last
// fitting line; the remainder cascades over as many pages as it needs. Every
// entry that opens a page carries a decoration whose margin covers the unused
// space of the previous page plus marginStack. The spacing after the last
// block of a page is dropped at the break.
func ComputePageEntries(ms []page.BlockMeasurement, budget, spacing, marginStack float64) []page.PageEntry {
	entries := make([]page.PageEntry, 0, len(ms))
	acc := 0.0
	for i, m := range ms {
		base := page.PageEntry{SourceIndex: i, SourcePos: m.Pos}

		// boundary is inclusive: a block ending exactly at the budget stays
		if acc+m.TotalHeight <= budget {
			e := base
			e.Height = m.TotalHeight
			e.Lines = copyRects(m.Lines)
			entries = append(entries, e)
			acc += m.TotalHeight + spacing
			continue
		}

		if len(m.Lines) == 0 {
			e := base
			e.Height = m.TotalHeight
			e.Lines = []page.Rect{}
			if acc > 0 {
				e.Decoration = &page.Decoration{MarginTop: unused(budget, acc, spacing) + marginStack}
			}
			entries = append(entries, e)
			acc = m.TotalHeight + spacing
			continue
		}

		entries, acc = splitBlock(entries, base, m, acc, budget, spacing, marginStack)
	}
	return entries
}

// splitBlock emits the entries of a block that overflows the current page
func splitBlock(entries []page.PageEntry, base page.PageEntry, m page.BlockMeasurement, acc, budget, spacing, marginStack float64) ([]page.PageEntry, float64) {
	rest := m.Lines
	restHeight := m.TotalHeight
	offset := 0
	startsPage := false
	prevRemaining := 0.0

	decoration := func() *page.Decoration {
		if !startsPage {
			return nil
		}
		return &page.Decoration{MarginTop: prevRemaining + marginStack}
	}

	for {
		if acc+restHeight <= budget {
			e := base
			e.Height = restHeight
			e.Lines = copyRects(rest)
			e.Decoration = decoration()
			return append(entries, e), acc + restHeight + spacing
		}

		fit, fitHeight := fitLines(rest, budget-acc)
		if fit == len(rest) {
			// the lines fit but the block's padding does not: carry the last line
			fit--
			fitHeight -= rest[fit].Height
		}

		if fit <= 0 {
			if acc > 0 {
				// nothing fits the partial page: retry at the top of the next one
				prevRemaining = unused(budget, acc, spacing)
				startsPage = true
				acc = 0
				continue
			}
			if len(rest) == 1 {
				e := base
				e.Height = restHeight
				e.Lines = copyRects(rest)
				e.Decoration = decoration()
				return append(entries, e), restHeight + spacing
			}
			// a line taller than a whole page overflows on its own page
			fit, fitHeight = 1, rest[0].Height
		}

		e := base
		e.Height = fitHeight
		e.Lines = copyRects(rest[:fit])
		e.Decoration = decoration()
		e.Split = &page.Split{SplitAfterLine: offset + fit - 1, SourcePos: m.Pos}
		entries = append(entries, e)

		// negative only after an isolated overflowing line
		prevRemaining = budget - acc - fitHeight
		startsPage = true
		acc = 0
		rest = rest[fit:]
		offset += fit
		restHeight = sumHeights(rest)
	}
}

// fitLines returns how many leading lines fit in space and their height
func fitLines(lines []page.Rect, space float64) (int, float64) {
	h := 0.0
	for i, l := range lines {
		if h+l.Height > space {
			return i, h
		}
		h += l.Height
	}
	return len(lines), h
}

// ComputeLayout paginates whole blocks without splitting them: a block
// that does not fit the space left on a page starts the next page.
func ComputeLayout(ms []page.BlockMeasurement, budget, spacing float64) page.LayoutResult {
	res := page.SinglePage()
	acc := 0.0
	for _, m := range ms {
		if acc > 0 && acc+m.TotalHeight > budget {
			res.PageStarts = append(res.PageStarts, page.PageStart{
				Pos:            m.Pos,
				PageNumber:     res.PageCount + 1,
				RemainingSpace: unused(budget, acc, spacing),
			})
			res.PageCount++
			acc = 0
		}
		acc += m.TotalHeight + spacing
	}
	return res
}

// unused returns the space left below the last block of a page. acc counts
// the spacing after that block, which the page break drops.
func unused(budget, acc, spacing float64) float64 {
	if acc <= 0 {
		return budget
	}
	return budget - acc + spacing
}
