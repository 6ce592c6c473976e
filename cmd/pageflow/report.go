package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gompdf/pageflow"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Width(6)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderReport prints one row per page
func renderReport(title string, pages []pageflow.PageSummary) string {
	var b strings.Builder
	noun := "pages"
	if len(pages) == 1 {
		noun = "page"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d %s", title, len(pages), noun)))
	b.WriteString("\n")
	for _, p := range pages {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			numberStyle.Render(fmt.Sprintf("p%d", p.Number)),
			statusStyle.Render(fmt.Sprintf("pos %-6d blocks %-3d free %6.1fpx  ", p.StartPos, p.Blocks, p.RemainingSpace)),
			mutedStyle.Render(p.Preview),
		)
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}
