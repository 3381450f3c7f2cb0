package print

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bgunnarsson/xpstat/internal/db"
)

// Catppuccin Mocha, shared with the interactive viewer.
var (
	BorderColor = lipgloss.Color("#595B72")
	TitleColor  = lipgloss.Color("#89DCEB")
	TextColor   = lipgloss.Color("#CDD6F4")
	MutedColor  = lipgloss.Color("#9399B2")
	AccentColor = lipgloss.Color("#C0A1F0")
	StripeColor = lipgloss.Color("#181825")
)

// RenderStyled writes rows as a bordered, coloured table for terminals.
func RenderStyled(w io.Writer, rows *db.Rows, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}
	if len(rows.Columns) == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	headers := make([]string, len(rows.Columns))
	for i, col := range rows.Columns {
		headers[i] = col.Name
	}

	data := make([][]string, len(rows.Data))
	for r, row := range rows.Data {
		cells := make([]string, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = truncate(FormatCell(row[i]), opts.MaxWidth)
			}
		}
		data[r] = cells
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(TitleColor).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(TextColor).Padding(0, 1)
	stripe := cell.Background(StripeColor)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row%2 == 1:
				return stripe
			default:
				return cell
			}
		})

	fmt.Fprintln(w, t.Render())
}

// RenderTuple writes one row on one line, e.g. (1, LordOfWoeHC, 100).
func RenderTuple(w io.Writer, row db.Row) error {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = FormatCell(v)
	}
	_, err := fmt.Fprintf(w, "(%s)\n", strings.Join(cells, ", "))
	return err
}
