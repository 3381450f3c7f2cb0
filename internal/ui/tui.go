package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/print"
)

// RunFunc runs the report for one username and returns every matching row.
type RunFunc func(ctx context.Context, username string) (*db.Rows, error)

// Options configure the interactive viewer.
type Options struct {
	Label    string // driver name, e.g. "mysql"
	Table    string
	Username string // run immediately when set
	Run      RunFunc
	MaxWidth int
}

// Run starts the interactive viewer and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Run == nil {
		return errors.New("ui: no run function")
	}
	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type focus int

const (
	focusInput focus = iota
	focusResult
)

type overlay int

const (
	overlayNone overlay = iota
	overlayDetail
	overlayHelp
)

// resultMsg carries one finished report run back to Update.
type resultMsg struct {
	username string
	rows     *db.Rows
	err      error
	elapsed  time.Duration
}

type model struct {
	ctx  context.Context
	opts Options

	input  textinput.Model
	result table.Model

	focus    focus
	overlay  overlay
	status   string
	level    statusLevel
	running  bool
	lastRows *db.Rows

	width, height int
}

func newModel(ctx context.Context, opts Options) model {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "username"
	in.CharLimit = 64
	in.SetValue(opts.Username)
	in.Focus()

	res := table.New(table.WithFocused(false), table.WithHeight(10))
	res.SetStyles(tableStyles())

	m := model{
		ctx:    ctx,
		opts:   opts,
		input:  in,
		result: res,
		status: "Type a username and press Enter.",
		level:  levelInfo,
	}
	// Init starts this run; Enter must wait for it.
	if u := strings.TrimSpace(opts.Username); u != "" {
		m.running = true
		m.setStatus(levelBusy, "Running report for %s…", truncateInline(u, 32))
	}
	return m
}

func (m model) Init() tea.Cmd {
	if u := strings.TrimSpace(m.opts.Username); u != "" {
		return m.run(u)
	}
	return textinput.Blink
}

// run executes the report off the UI goroutine.
func (m model) run(username string) tea.Cmd {
	ctx, fn := m.ctx, m.opts.Run
	return func() tea.Msg {
		start := time.Now()
		rows, err := fn(ctx, username)
		return resultMsg{username: username, rows: rows, err: err, elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.result.SetWidth(max(msg.Width-4, 10))
		// room for the header, input, status and hint lines
		m.result.SetHeight(max(msg.Height-14, 3))
		return m, nil

	case resultMsg:
		m.running = false
		if msg.err != nil {
			m.setStatus(levelError, "Query error: %v", msg.err)
			return m, nil
		}
		m.renderRows(msg.rows)
		m.setStatus(levelOK, "Query OK for %s (%d rows, %s)",
			truncateInline(msg.username, 32), len(msg.rows.Data), msg.elapsed.Truncate(time.Millisecond))
		if len(msg.rows.Data) > 0 {
			m.setFocus(focusResult)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.delegate(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Overlays close with Esc, Enter, Ctrl+Q or Ctrl+/.
	if m.overlay != overlayNone {
		switch key {
		case "esc", "enter", "ctrl+q", "ctrl+_", "?":
			m.overlay = overlayNone
		}
		return m, nil
	}

	switch key {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit
	case "ctrl+_":
		m.overlay = overlayHelp
		return m, nil
	case "tab", "shift+tab":
		if m.focus == focusInput {
			m.setFocus(focusResult)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil
	}

	if m.focus == focusResult {
		switch key {
		case "?":
			m.overlay = overlayHelp
			return m, nil
		case "enter":
			if m.selectedRow() != nil {
				m.overlay = overlayDetail
			}
			return m, nil
		case "/", "i":
			m.setFocus(focusInput)
			return m, nil
		}
		return m.delegate(msg)
	}

	if key == "enter" {
		username := strings.TrimSpace(m.input.Value())
		if username == "" {
			m.setStatus(levelError, "Enter a username.")
			return m, nil
		}
		if m.running {
			return m, nil
		}
		m.running = true
		m.setStatus(levelBusy, "Running report for %s…", truncateInline(username, 32))
		return m, m.run(username)
	}
	return m.delegate(msg)
}

// delegate hands msg to whichever component has focus.
func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.result, cmd = m.result.Update(msg)
	}
	return m, cmd
}

func (m *model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.result.Blur()
		m.input.Focus()
		return
	}
	m.input.Blur()
	m.result.Focus()
}

func (m *model) setStatus(l statusLevel, format string, args ...any) {
	m.level = l
	m.status = fmt.Sprintf(format, args...)
}

func (m *model) renderRows(rows *db.Rows) {
	if rows == nil {
		rows = &db.Rows{}
	}
	m.lastRows = rows

	colWidths := make([]int, len(rows.Columns))
	for i, col := range rows.Columns {
		colWidths[i] = min(runeLen(col.Name), m.opts.MaxWidth)
	}
	data := make([]table.Row, len(rows.Data))
	for r, row := range rows.Data {
		cells := make(table.Row, len(rows.Columns))
		for c := range cells {
			if c >= len(row) {
				continue
			}
			text := strings.ReplaceAll(print.FormatCell(row[c]), "\n", " ")
			if runeLen(text) > m.opts.MaxWidth {
				text = truncateRunes(text, m.opts.MaxWidth-1) + "…"
			}
			colWidths[c] = max(colWidths[c], runeLen(text))
			cells[c] = text
		}
		data[r] = cells
	}

	cols := make([]table.Column, len(rows.Columns))
	for i, col := range rows.Columns {
		cols[i] = table.Column{Title: col.Name, Width: colWidths[i]}
	}

	// Rows must be cleared first; the table renders existing rows against
	// the new columns.
	m.result.SetRows(nil)
	m.result.SetColumns(cols)
	m.result.SetRows(data)
	m.result.GotoTop()
}

func (m model) selectedRow() db.Row {
	if m.lastRows == nil {
		return nil
	}
	i := m.result.Cursor()
	if i < 0 || i >= len(m.lastRows.Data) {
		return nil
	}
	return m.lastRows.Data[i]
}
