package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultRows = 10

// model is the Bubble Tea model of a single-choice list.
type model struct {
	message string
	items   []string
	filter  textinput.Model
	matches fuzzy.Matches
	cursor  int
	offset  int
	rows    int
	choice  string
	done    bool
	aborted bool
}

func newModel(message string, items []string) model {
	ti := textinput.New()
	ti.Prompt = hintStyle.Render(filterPrompt)
	ti.Placeholder = "type to filter"
	ti.CharLimit = 256
	ti.Focus()

	m := model{
		message: message,
		items:   items,
		filter:  ti,
		rows:    defaultRows,
	}
	m.refresh()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// Reserve the question, filter and hint lines.
		m.rows = max(1, min(defaultRows, msg.Height-3))
		m.scroll()

		return m, nil
	}

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) == 0 {
			return m, nil
		}

		m.choice = m.matches[m.cursor].Str
		m.done = true

		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlP:
		m.move(-1)

		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.rows)

		return m, nil

	case tea.KeyPgDown:
		m.move(m.rows)

		return m, nil

	case tea.KeyHome:
		m.move(-len(m.matches))

		return m, nil

	case tea.KeyEnd:
		m.move(len(m.matches))

		return m, nil
	}

	before := m.filter.Value()

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(msg)

	if m.filter.Value() != before {
		m.refresh()
	}

	return m, cmd
}

// move shifts the cursor by delta, clamped to the match list.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = max(0, min(len(m.matches)-1, m.cursor+delta))
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *model) scroll() {
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+m.rows:
		m.offset = m.cursor - m.rows + 1
	}

	m.offset = max(0, min(m.offset, len(m.matches)-m.rows))
}

// refresh recomputes the matches for the current filter text. An empty
// filter keeps every item in its original order.
func (m *model) refresh() {
	pattern := strings.TrimSpace(m.filter.Value())

	if pattern == "" {
		m.matches = make(fuzzy.Matches, len(m.items))
		for i, s := range m.items {
			m.matches[i] = fuzzy.Match{Str: s, Index: i}
		}
	} else {
		m.matches = fuzzy.Find(pattern, m.items)
	}

	m.cursor, m.offset = 0, 0
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(questionStyle.Render(questionMark))
	b.WriteString(messageStyle.Render(m.message))

	switch {
	case m.done:
		b.WriteString(" " + answerStyle.Render(m.choice) + "\n")

		return b.String()

	case m.aborted:
		b.WriteString(" " + hintStyle.Render("(aborted)") + "\n")

		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	if len(m.matches) == 0 {
		b.WriteString(hintStyle.Render("  no matching profiles"))
		b.WriteString("\n")

		return b.String()
	}

	end := min(len(m.matches), m.offset+m.rows)
	for i := m.offset; i < end; i++ {
		b.WriteString(renderItem(m.matches[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render(fmt.Sprintf("  %d/%d  ↑/↓ move · enter select · esc abort",
		m.cursor+1, len(m.matches))))
	b.WriteString("\n")

	return b.String()
}

// renderItem renders one list line with its matched characters highlighted.
func renderItem(match fuzzy.Match, selected bool) string {
	base := itemStyle
	prefix := "  "

	if selected {
		base = selectedStyle
		prefix = selectedStyle.Render(pointer)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	b.WriteString(prefix)

	for i, r := range match.Str {
		style := base
		if matched[i] {
			style = lipgloss.NewStyle().Inherit(matchStyle).Inherit(base)
		}

		b.WriteString(style.Render(string(r)))
	}

	return b.String()
}
