// Package editor is the SQL editor pane of the interactive browser.
package editor

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joacominatel/pgbrowse/internal/database"
	"github.com/joacominatel/pgbrowse/internal/theme"
)

// ExecuteQueryMsg is sent when the user runs the editor content.
type ExecuteQueryMsg struct {
	Query string
}

var keywords = func() map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(`
		select from where and or not in is null like ilike between exists
		insert into values update set delete returning
		create drop alter table index view schema truncate
		join inner outer left right full cross on using
		order by group having limit offset as distinct asc desc nulls first last
		count sum avg min max coalesce
		case when then else end union all intersect except with
		begin commit rollback explain analyze true false default
		primary key foreign references cascade restrict`) {
		set[w] = true
	}
	return set
}()

// Model is the editor component.
type Model struct {
	textarea textarea.Model
	width    int
	height   int
	focused  bool

	names   []string
	matches []string
	match   int
}

// New creates a new editor model.
func New() Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT * FROM ..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Prompt = "│ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.StyleMuted
	ta.BlurredStyle.Placeholder = theme.StyleMuted
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorPrimary)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.ColorBorder)

	return Model{textarea: ta}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(1, w-2))
	m.textarea.SetHeight(max(1, h-2))
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.textarea.Focus()
		return
	}
	m.textarea.Blur()
}

// Focused returns whether the editor has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the editor content.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetQuery replaces the editor content.
func (m *Model) SetQuery(query string) {
	m.textarea.SetValue(query)
	m.resetCompletion()
}

// SetTables sets the names offered by completion: bare table names and their
// schema-qualified form.
func (m *Model) SetTables(tables []database.Table) {
	seen := map[string]bool{}
	m.names = m.names[:0]
	for _, t := range tables {
		for _, n := range []string{t.Name, t.Qualified()} {
			if !seen[n] {
				seen[n] = true
				m.names = append(m.names, n)
			}
		}
	}
	sort.Strings(m.names)
}

// Completing reports whether a completion cycle is in progress.
func (m Model) Completing() bool {
	return len(m.matches) > 0
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+e", "f5":
			query := strings.TrimSpace(m.textarea.Value())
			m.resetCompletion()
			if query == "" {
				return m, nil
			}
			return m, func() tea.Msg { return ExecuteQueryMsg{Query: query} }
		case "ctrl+k":
			m.textarea.Reset()
			m.resetCompletion()
			return m, nil
		case "ctrl+l":
			m.textarea.SetValue(UppercaseKeywords(m.textarea.Value()))
			return m, nil
		case "tab":
			m.Complete()
			return m, nil
		case "esc":
			m.resetCompletion()
			return m, nil
		default:
			m.resetCompletion()
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// Complete replaces the word before the cursor with the next table name that
// starts with it and reports whether it did. It only fires after a keyword
// that takes a table.
func (m *Model) Complete() bool {
	text := m.textarea.Value()

	if len(m.matches) > 0 {
		m.match = (m.match + 1) % len(m.matches)
		m.textarea.SetValue(strings.TrimSuffix(text, lastWord(text)) + m.matches[m.match])
		return true
	}

	word := lastWord(text)
	if word == "" || !afterTableKeyword(strings.TrimSuffix(text, word)) {
		return false
	}

	prefix := strings.ToLower(word)
	var found []string
	for _, n := range m.names {
		if strings.HasPrefix(strings.ToLower(n), prefix) {
			found = append(found, n)
		}
	}
	if len(found) == 0 {
		return false
	}

	m.matches = found
	m.match = 0
	m.textarea.SetValue(strings.TrimSuffix(text, word) + found[0])
	return true
}

func (m *Model) resetCompletion() {
	m.matches = nil
	m.match = 0
}

func afterTableKeyword(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[len(fields)-1]) {
	case "FROM", "JOIN", "INTO", "UPDATE", "TABLE":
		return true
	}
	return false
}

func lastWord(s string) string {
	i := len(s)
	for i > 0 && isWordByte(s[i-1]) {
		i--
	}
	return s[i:]
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// UppercaseKeywords uppercases SQL keywords outside of quoted strings,
// quoted identifiers and line comments.
func UppercaseKeywords(sql string) string {
	var out, word strings.Builder
	flush := func() {
		w := word.String()
		if keywords[strings.ToLower(w)] {
			w = strings.ToUpper(w)
		}
		out.WriteString(w)
		word.Reset()
	}

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'' || r == '"':
			flush()
			j := i + 1
			for j < len(runes) && runes[j] != r {
				j++
			}
			end := min(j+1, len(runes))
			out.WriteString(string(runes[i:end]))
			i = end - 1
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			flush()
			j := i
			for j < len(runes) && runes[j] != '\n' {
				j++
			}
			out.WriteString(string(runes[i:j]))
			i = j - 1
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			word.WriteRune(r)
		default:
			flush()
			out.WriteRune(r)
		}
	}
	flush()
	return out.String()
}

// View renders the editor.
func (m Model) View() string {
	view := theme.StyleTitle.Render("Query") + "\n" + m.textarea.View()
	if len(m.matches) < 2 {
		return view
	}

	names := make([]string, len(m.matches))
	for i, n := range m.matches {
		if i == m.match {
			names[i] = theme.StyleSelected.Render(n)
			continue
		}
		names[i] = theme.StyleMuted.Render(n)
	}
	return view + "\n " + theme.StyleMuted.Render("tab: ") + strings.Join(names, " │ ")
}
