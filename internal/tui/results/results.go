// Package results is the grid pane of the interactive browser. It shows a
// page of table rows, the output of an ad-hoc query or a table structure.
package results

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/export"
	"github.com/joacominatel/pgbrowse/internal/theme"
)

// Source says what the grid holds. It decides whether paging applies and how exports are produced.
type Source int

const (
	SourceNone Source = iota
	SourceTable
	SourceQuery
	SourceStructure
)

const maxColumnWidth = 40

// Model is the results component.
type Model struct {
	source   Source
	table    database.Table
	opts     database.FetchOptions
	total    int64
	duration time.Duration
	columns  []string
	rows     []database.Row
	err      error
	loading  bool

	width   int
	height  int
	focused bool

	row       int
	col       int
	scroll    int
	colScroll int
	widths    []int
}

// New creates a new results model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetPage shows one page of a table.
func (m *Model) SetPage(table database.Table, opts database.FetchOptions, page *database.Page) {
	m.reset(SourceTable, database.ColumnNames(page.Columns), page.Rows)
	m.table = table
	m.opts = opts
	m.total = page.Total
}

// SetResult shows the output of an ad-hoc query.
func (m *Model) SetResult(result *database.QueryResult) {
	m.reset(SourceQuery, result.Columns, result.Rows)
	m.duration = result.Duration
}

// SetStructure shows the columns of a table, one per row.
func (m *Model) SetStructure(table database.Table, columns []database.Column) {
	rows := make([]database.Row, len(columns))
	for i, c := range columns {
		def := database.Null()
		if c.Default != nil {
			def = database.StringValue(*c.Default)
		}
		size := database.Null()
		if c.MaxLength != nil {
			size = database.IntValue(*c.MaxLength)
		}
		rows[i] = database.Row{
			{Column: "column", Value: database.StringValue(c.Name)},
			{Column: "type", Value: database.StringValue(c.DataType)},
			{Column: "nullable", Value: database.BoolValue(c.IsNullable)},
			{Column: "default", Value: def},
			{Column: "length", Value: size},
			{Column: "primary", Value: database.BoolValue(c.IsPrimary)},
		}
	}
	m.reset(SourceStructure, []string{"column", "type", "nullable", "default", "length", "primary"}, rows)
	m.table = table
}

// SetError replaces the grid with an error.
func (m *Model) SetError(err error) {
	m.reset(SourceNone, nil, nil)
	m.err = err
}

func (m *Model) reset(source Source, columns []string, rows []database.Row) {
	m.source = source
	m.table = database.Table{}
	m.opts = database.FetchOptions{}
	m.total = 0
	m.duration = 0
	m.columns = columns
	m.rows = rows
	m.err = nil
	m.loading = false
	m.row, m.col, m.scroll, m.colScroll = 0, 0, 0, 0
	m.measure()
}

// Source returns what the grid holds.
func (m Model) Source() Source {
	return m.source
}

// Table returns the table behind a page or structure grid.
func (m Model) Table() (database.Table, bool) {
	return m.table, m.source == SourceTable || m.source == SourceStructure
}

// Columns returns the column names on screen.
func (m Model) Columns() []string {
	return m.columns
}

// Rows returns the rows on screen.
func (m Model) Rows() []database.Row {
	return m.rows
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.row, m.col
}

func (m *Model) measure() {
	m.widths = make([]int, len(m.columns))
	for i, c := range m.columns {
		m.widths[i] = lipgloss.Width(c)
	}
	for _, r := range m.rows {
		for i := range m.widths {
			if w := lipgloss.Width(cellText(r, i)); w > m.widths[i] {
				m.widths[i] = w
			}
		}
	}
	for i := range m.widths {
		m.widths[i] = min(max(m.widths[i], 1), maxColumnWidth)
	}
}

func cellText(r database.Row, i int) string {
	if i >= len(r) || r[i].Value.IsNull() {
		return "NULL"
	}
	return r[i].Value.String()
}

// visibleRows is the number of data lines that fit under the title, header and separator.
func (m Model) visibleRows() int {
	return max(1, m.height-3)
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.moveRow(-1)
	case "down", "j":
		m.moveRow(1)
	case "pgup":
		m.moveRow(-m.visibleRows())
	case "pgdown":
		m.moveRow(m.visibleRows())
	case "left", "h":
		m.moveCol(-1)
	case "right", "l":
		m.moveCol(1)
	case "n", "]":
		return m, m.nextPage()
	case "p", "[":
		return m, m.prevPage()
	case "s":
		return m, m.sortByColumn()
	case "c":
		return m, m.copyCell()
	case "y":
		return m, m.copyRowJSON()
	case "Y":
		return m, m.copyRowCSV()
	case "e":
		return m, m.exportCmd(export.FormatCSV)
	case "E":
		return m, m.exportCmd(export.FormatJSON)
	}

	return m, nil
}

func (m *Model) moveRow(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.row = min(max(m.row+delta, 0), len(m.rows)-1)

	visible := m.visibleRows()
	if m.row < m.scroll {
		m.scroll = m.row
	}
	if m.row >= m.scroll+visible {
		m.scroll = m.row - visible + 1
	}
}

func (m *Model) moveCol(delta int) {
	if len(m.columns) == 0 {
		return
	}
	m.col = min(max(m.col+delta, 0), len(m.columns)-1)
	if m.col < m.colScroll {
		m.colScroll = m.col
	}
	for m.col > m.colScroll && !m.fits(m.colScroll, m.col) {
		m.colScroll++
	}
}

// fits reports whether columns from..to fit the pane width side by side.
func (m Model) fits(from, to int) bool {
	if m.width <= 0 {
		return true
	}
	used := 2
	for i := from; i <= to; i++ {
		used += m.widths[i] + 3
	}
	return used <= m.width
}

func (m Model) pageSize() int {
	if m.opts.Limit > 0 {
		return m.opts.Limit
	}
	return database.DefaultPageSize
}

func (m Model) nextPage() tea.Cmd {
	if m.source != SourceTable || int64(m.opts.Offset+m.pageSize()) >= m.total {
		return nil
	}
	opts := m.opts
	opts.Offset += m.pageSize()
	return m.fetch(opts)
}

func (m Model) prevPage() tea.Cmd {
	if m.source != SourceTable || m.opts.Offset == 0 {
		return nil
	}
	opts := m.opts
	opts.Offset = max(0, opts.Offset-m.pageSize())
	return m.fetch(opts)
}

// sortByColumn orders the table by the selected column, flipping the direction
// when it is already the sort column. Sorting restarts at the first page.
func (m Model) sortByColumn() tea.Cmd {
	if m.source != SourceTable || m.col >= len(m.columns) {
		return nil
	}
	opts := m.opts
	column := m.columns[m.col]
	if opts.OrderBy == column && strings.EqualFold(opts.OrderDir, "ASC") {
		opts.OrderDir = "DESC"
	} else {
		opts.OrderBy = column
		opts.OrderDir = "ASC"
	}
	opts.Offset = 0
	return m.fetch(opts)
}

func (m Model) fetch(opts database.FetchOptions) tea.Cmd {
	table := m.table
	return func() tea.Msg { return FetchPageMsg{Table: table, Options: opts} }
}

// View renders the results pane.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Results")

	switch {
	case m.loading:
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	case m.err != nil:
		return title + "\n" + theme.StyleError.Render("  Error: "+m.err.Error())
	case m.source == SourceNone:
		return title + "\n" + theme.StyleMuted.Render("  Open a table or run a query")
	}

	header := title + "  " + theme.StyleMuted.Render(m.summary())
	if len(m.columns) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query executed successfully")
	}

	last := m.colScroll
	for last+1 < len(m.columns) && m.fits(m.colScroll, last+1) {
		last++
	}

	out := []string{header, m.renderHeader(m.colScroll, last), m.renderSeparator(m.colScroll, last)}
	if len(m.rows) == 0 {
		out = append(out, theme.StyleMuted.Render("  No rows"))
	}
	for i := m.scroll; i < len(m.rows) && i < m.scroll+m.visibleRows(); i++ {
		out = append(out, m.renderRow(i, m.colScroll, last))
	}
	return strings.Join(out, "\n")
}

func (m Model) summary() string {
	switch m.source {
	case SourceTable:
		if len(m.rows) == 0 {
			return fmt.Sprintf("%s | 0 of %d", m.table.Qualified(), m.total)
		}
		from := m.opts.Offset + 1
		to := m.opts.Offset + len(m.rows)
		s := fmt.Sprintf("%s | rows %d-%d of %d", m.table.Qualified(), from, to, m.total)
		if m.opts.OrderBy != "" {
			s += " | by " + m.opts.OrderBy + " " + strings.ToLower(m.opts.OrderDir)
		}
		return s
	case SourceStructure:
		return m.table.Qualified() + " | " + strconv.Itoa(len(m.rows)) + " column(s)"
	default:
		return fmt.Sprintf("%d row(s) | %s", len(m.rows), m.duration.Round(time.Microsecond))
	}
}

func (m Model) renderHeader(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(pad(m.columns[i], m.widths[i])))
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator(from, to int) string {
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		parts = append(parts, strings.Repeat("─", m.widths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

func (m Model) renderRow(index, from, to int) string {
	r := m.rows[index]
	parts := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		text := pad(cellText(r, i), m.widths[i])
		switch {
		case index == m.row && i == m.col && m.focused:
			text = theme.StyleSelected.Reverse(true).Render(text)
		case index == m.row:
			text = theme.StyleSelected.Render(text)
		case i >= len(r) || r[i].Value.IsNull():
			text = theme.StyleNull.Render(text)
		}
		parts = append(parts, text)
	}
	return "  " + strings.Join(parts, " │ ")
}

// pad fits s to exactly width cells, cutting it with an ellipsis when too wide.
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
