// Package explorer is the table tree pane of the interactive browser.
package explorer

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/theme"
)

// NodeKind identifies the type of a tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeSchema
	NodeTable
	NodeColumn
)

// RequestColumnsMsg asks for the columns of a table that was just expanded.
type RequestColumnsMsg struct {
	Table database.Table
}

// OpenTableMsg asks for the first page of a table's rows.
type OpenTableMsg struct {
	Table database.Table
}

// DescribeMsg asks for the structure of a table.
type DescribeMsg struct {
	Table database.Table
}

type node struct {
	kind     NodeKind
	name     string
	detail   string
	table    database.Table
	parent   *node
	children []*node
	expanded bool
	loaded   bool
}

type line struct {
	node  *node
	depth int
}

// Model is the explorer component.
type Model struct {
	root    *node
	lines   []line
	cursor  int
	width   int
	height  int
	focused bool
	loading bool
}

// New creates a new explorer model.
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

// Focused returns whether the explorer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTables rebuilds the tree from a table listing. The public schema starts expanded.
func (m *Model) SetTables(dbName string, tables []database.Table) {
	root := &node{kind: NodeDatabase, name: dbName, expanded: true, loaded: true}

	schemas := map[string]*node{}
	for _, t := range tables {
		s, ok := schemas[t.Schema]
		if !ok {
			s = &node{kind: NodeSchema, name: t.Schema, parent: root, loaded: true, expanded: t.Schema == "public"}
			schemas[t.Schema] = s
			root.children = append(root.children, s)
		}
		s.children = append(s.children, &node{kind: NodeTable, name: t.Name, table: t, parent: s})
	}

	m.root = root
	m.loading = false
	m.cursor = 0
	m.rebuild()
}

// SetColumns attaches column nodes to a table.
func (m *Model) SetColumns(table database.Table, columns []database.Column) {
	n := m.find(table)
	if n == nil {
		return
	}

	n.children = n.children[:0]
	for _, c := range columns {
		detail := c.DataType
		if c.IsPrimary {
			detail += " pk"
		}
		n.children = append(n.children, &node{kind: NodeColumn, name: c.Name, detail: detail, table: table, parent: n})
	}
	n.loaded = true
	m.rebuild()
}

func (m *Model) find(table database.Table) *node {
	if m.root == nil {
		return nil
	}
	for _, s := range m.root.children {
		if s.name != table.Schema {
			continue
		}
		for _, t := range s.children {
			if t.name == table.Name {
				return t
			}
		}
	}
	return nil
}

// Selected returns the table under the cursor. A column selects its table.
func (m Model) Selected() (database.Table, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return database.Table{}, false
	}
	n := m.lines[m.cursor].node
	if n.kind == NodeTable || n.kind == NodeColumn {
		return n.table, true
	}
	return database.Table{}, false
}

// Tables returns every table in the tree.
func (m Model) Tables() []database.Table {
	if m.root == nil {
		return nil
	}
	var out []database.Table
	for _, s := range m.root.children {
		for _, t := range s.children {
			out = append(out, t.table)
		}
	}
	return out
}

func (m *Model) rebuild() {
	m.lines = m.lines[:0]
	if m.root != nil {
		m.walk(m.root, 0)
	}
	if m.cursor >= len(m.lines) {
		m.cursor = max(0, len(m.lines)-1)
	}
}

func (m *Model) walk(n *node, depth int) {
	m.lines = append(m.lines, line{node: n, depth: depth})
	if !n.expanded {
		return
	}
	for _, c := range n.children {
		m.walk(c, depth+1)
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the explorer.
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
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.lines)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.lines)-1)
	case "enter", "right", "l":
		cmd := m.expand()
		return m, cmd
	case "left", "h":
		m.collapse()
	case "s", "o":
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenTableMsg{Table: t} }
		}
	case "d":
		if t, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DescribeMsg{Table: t} }
		}
	}

	return m, nil
}

func (m *Model) expand() tea.Cmd {
	if m.cursor >= len(m.lines) {
		return nil
	}
	n := m.lines[m.cursor].node
	if n.kind == NodeColumn {
		return nil
	}

	n.expanded = !n.expanded
	m.rebuild()

	if n.kind == NodeTable && n.expanded && !n.loaded {
		t := n.table
		return func() tea.Msg { return RequestColumnsMsg{Table: t} }
	}
	return nil
}

// collapse folds the node under the cursor, or moves to its parent when there is nothing to fold.
func (m *Model) collapse() {
	if m.cursor >= len(m.lines) {
		return
	}
	n := m.lines[m.cursor].node

	if n.expanded && n.kind != NodeDatabase {
		n.expanded = false
		m.rebuild()
		return
	}
	if n.parent == nil {
		return
	}
	for i, l := range m.lines {
		if l.node == n.parent {
			m.cursor = i
			return
		}
	}
}

// View renders the explorer.
func (m Model) View() string {
	title := theme.StyleTitle.Render("Tables")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}
	if m.root == nil {
		return title + "\n" + theme.StyleMuted.Render("  Not connected")
	}
	if len(m.root.children) == 0 {
		return title + "\n" + theme.StyleMuted.Render("  No tables found")
	}

	visible := max(1, m.height-2)
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	out := []string{title}
	for i := offset; i < len(m.lines) && i < offset+visible; i++ {
		out = append(out, m.render(m.lines[i], i == m.cursor))
	}
	return strings.Join(out, "\n")
}

func (m Model) render(l line, selected bool) string {
	n := l.node

	marker := "  "
	if n.kind != NodeColumn {
		marker = "▸ "
		if n.expanded {
			marker = "▾ "
		}
	}

	text := strings.Repeat("  ", l.depth) + marker + n.name
	if n.detail != "" {
		text += " " + n.detail
	}
	if m.width > 4 && lipgloss.Width(text) > m.width-2 {
		text = truncate(text, m.width-2)
	}

	if selected {
		return theme.StyleSelected.Render(text)
	}
	if n.kind == NodeColumn {
		return theme.StyleMuted.Render(text)
	}
	return text
}

func truncate(s string, width int) string {
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
