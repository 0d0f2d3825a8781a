package tui

import (
	"fmt"
	"strings"

	"golang-stock-dashboard/internal/dashboard/panel"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	focusTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("15"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	selectedMark   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

func toneStyle(t panel.Tone) lipgloss.Style {
	switch t {
	case panel.TonePositive:
		return gainStyle
	case panel.ToneNegative:
		return lossStyle
	default:
		return lipgloss.NewStyle()
	}
}

// renderView draws a panel.View as plain terminal text. highlightRow marks a
// table row, -1 for none.
func renderView(v panel.View, highlightRow int) string {
	var b strings.Builder

	if v.Loading {
		b.WriteString(dimStyle.Render("Loading…"))
		b.WriteString("\n")
		return b.String()
	}
	if v.Error != "" {
		b.WriteString(errorStyle.Render("Error: " + v.Error))
		b.WriteString("\n")
		return b.String()
	}

	if len(v.Cards) > 0 {
		b.WriteString(renderCards(v.Cards))
		b.WriteString("\n")
	}
	if v.Table != nil {
		b.WriteString(renderTable(v.Table, highlightRow))
	}
	for i, n := range v.News {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n.Title)
		meta := strings.TrimSpace(strings.Join(nonEmpty(n.Source, n.Published), "  "))
		if meta != "" {
			b.WriteString("   " + dimStyle.Render(meta))
		}
		if n.Sentiment != "" {
			b.WriteString("  " + toneStyle(n.Tone).Render(n.Sentiment))
		}
		b.WriteString("\n")
		if n.Summary != "" {
			b.WriteString("   " + n.Summary + "\n")
		}
	}
	for _, n := range v.Notes {
		b.WriteString(dimStyle.Render("• "+n) + "\n")
	}

	prov := strings.Join(nonEmpty(prefixed("source: ", v.Source), prefixed("updated: ", v.LastUpdated)), "   ")
	if prov != "" {
		b.WriteString(dimStyle.Render(prov) + "\n")
	}
	return b.String()
}

func renderCards(cards []panel.Card) string {
	const perLine = 4
	var lines []string
	for i := 0; i < len(cards); i += perLine {
		end := i + perLine
		if end > len(cards) {
			end = len(cards)
		}
		parts := make([]string, 0, perLine)
		for _, c := range cards[i:end] {
			parts = append(parts, labelStyle.Render(c.Label+": ")+toneStyle(c.Tone).Render(c.Value))
		}
		lines = append(lines, strings.Join(parts, "   "))
	}
	return strings.Join(lines, "\n")
}

func renderTable(t *panel.Table, highlightRow int) string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(formatRow(t.Columns, widths)) + "\n")
	for i, row := range t.Rows {
		line := formatRow(row, widths)
		if i == highlightRow {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if t.Truncated() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("showing %d of %d rows", len(t.Rows), t.Total)) + "\n")
	}
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func renderTabs(p panel.Provider, active string) string {
	parts := make([]string, 0, len(p.Tabs))
	for _, t := range p.Tabs {
		if t.ID() == active {
			parts = append(parts, activeTabStyle.Render(t.Label()))
			continue
		}
		parts = append(parts, tabStyle.Render(t.Label()))
	}
	return strings.Join(parts, " | ")
}

func padOrTrunc(s string, w int) string {
	if w <= 0 {
		return s
	}
	if lipgloss.Width(s) >= w {
		r := []rune(s)
		if len(r) > w {
			return string(r[:w])
		}
		return s
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

// RenderText renders a titled view for non-interactive output. Styles are
// dropped automatically when the output is not a terminal.
func RenderText(title string, v panel.View) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title) + "\n")
	}
	if v.Title != "" && v.Title != title && !v.Loading && v.Error == "" {
		b.WriteString(labelStyle.Render(v.Title) + "\n")
	}
	b.WriteString(renderView(v, -1))
	return b.String()
}
