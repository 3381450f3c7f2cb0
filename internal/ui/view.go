package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bgunnarsson/xpstat/internal/print"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelBusy
	levelOK
	levelError
)

// Catppuccin Mocha status colours.
var (
	busyColor  = lipgloss.Color("#F9E2AF")
	okColor    = lipgloss.Color("#A6E3A1")
	errorColor = lipgloss.Color("#F38BA8")
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(print.BorderColor).
	Padding(0, 1)

var (
	focusedBoxStyle = boxStyle.BorderForeground(print.TitleColor)
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(print.TitleColor)
	mutedStyle      = lipgloss.NewStyle().Foreground(print.MutedColor)
	accentStyle     = lipgloss.NewStyle().Foreground(print.AccentColor)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(print.BorderColor).
		BorderBottom(true).
		Bold(true).
		Foreground(print.TitleColor)
	s.Cell = s.Cell.Foreground(print.TextColor)
	s.Selected = s.Selected.
		Foreground(print.TextColor).
		Background(lipgloss.Color("#45475A")).
		Bold(false)
	return s
}

func (l statusLevel) style() lipgloss.Style {
	switch l {
	case levelBusy:
		return lipgloss.NewStyle().Foreground(busyColor)
	case levelOK:
		return lipgloss.NewStyle().Foreground(okColor)
	case levelError:
		return lipgloss.NewStyle().Foreground(errorColor)
	default:
		return mutedStyle
	}
}

func (m model) View() string {
	switch m.overlay {
	case overlayDetail:
		return m.place(m.detailView())
	case overlayHelp:
		return m.place(helpView())
	}

	header := boxStyle.Render(
		titleStyle.Render("XPSTAT") + "  " +
			accentStyle.Render(strings.ToUpper(m.opts.Label)) + "  " +
			mutedStyle.Render(m.opts.Table),
	)

	inputBox, resultBox := boxStyle, boxStyle
	if m.focus == focusInput {
		inputBox = focusedBoxStyle
	} else {
		resultBox = focusedBoxStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		inputBox.Render(mutedStyle.Render("Username (Enter to run)")+"\n"+m.input.View()),
		resultBox.Render(m.result.View()),
		boxStyle.Render(m.level.style().Render(m.status)),
		mutedStyle.Render(" Tab switch pane · Enter run/expand · Ctrl+/ help · Ctrl+Q quit"),
	)
}

func (m model) place(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m model) detailView() string {
	row := m.selectedRow()

	var b strings.Builder
	b.Grow(256)
	b.WriteString(titleStyle.Render("Row detail"))
	b.WriteString(mutedStyle.Render("  (Esc/Enter/Ctrl+Q/Ctrl+/ to close)"))
	b.WriteString("\n\n")

	for i, col := range m.lastRows.Columns {
		val := "NULL"
		if i < len(row) {
			val = print.FormatCell(row[i])
		}
		b.WriteString(accentStyle.Render(col.Name))
		b.WriteString(":\n  ")
		b.WriteString(val)
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

const helpText = `Global
  Ctrl+Q / Ctrl+C   Quit
  Ctrl+/            Toggle this help
  Tab               Switch between username and results

Username input
  Enter             Run the report for the typed username

Results pane
  ↑ / ↓             Move between rows
  Enter             Expand current row
  / or i            Back to the username input
  ?                 Toggle this help

Overlays close with Esc, Enter, Ctrl+Q, or Ctrl+/.`

func helpView() string {
	return boxStyle.Render(titleStyle.Render("xpstat help") + "\n\n" + helpText)
}
