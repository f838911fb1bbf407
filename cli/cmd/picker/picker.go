// Package picker is an interactive fuzzy finder over the modules declared
// in a project.
//
// The query is edited in a text input; the candidates below it are re-ranked
// with [project.Rank] after every keystroke, with matched characters
// highlighted. Up and Down move the selection, Enter chooses and Esc or
// Ctrl+C cancels.
package picker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/hsmod/project"
)

const (
	prompt        = "module> "
	defaultWidth  = 80
	defaultHeight = 10
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	itemStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatch  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	input    textinput.Model
	all      []project.Match
	matches  []project.Match
	cursor   int
	offset   int // first visible match
	width    int
	height   int // visible rows of matches
	chosen   int // index into matches, -1 until Enter
	quitting bool
}

func newModel(items []project.Match, query string) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth - len(prompt)
	ti.SetValue(query)

	m := model{
		input:  ti,
		all:    items,
		width:  defaultWidth,
		height: defaultHeight,
		chosen: -1,
	}

	return m.refilter()
}

func (m model) refilter() model {
	m.matches = project.Rank(strings.TrimSpace(m.input.Value()), m.all)
	m.cursor, m.offset = 0, 0

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
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(prompt)-2, 1)
		// Leave room for the input and hint lines.
		m.height = max(msg.Height-3, 1)

		return m.scroll(), nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) == 0 {
			return m, nil
		}

		m.chosen = m.cursor
		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp, tea.KeyCtrlP, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}

		return m.scroll(), nil

	case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}

		return m.scroll(), nil
	}

	before := m.input.Value()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m = m.refilter()
	}

	return m, cmd
}

// scroll keeps the cursor inside the visible window.
func (m model) scroll() model {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}

	return m
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.matches))
	for i := m.offset; i < end; i++ {
		b.WriteString(renderMatch(m.matches[i], i == m.cursor, m.width))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render(fmt.Sprintf("%d/%d", len(m.matches), len(m.all))))
	b.WriteString("\n")

	return b.String()
}

// renderMatch renders one candidate with its matched characters
// highlighted, followed by its location when it fits in width.
func renderMatch(match project.Match, selected bool, width int) string {
	base, highlight := itemStyle, highlightStyle
	if selected {
		base, highlight = selectedStyle, selectedMatch
	}

	matched := make(map[int]bool, len(match.Indexes))
	for _, idx := range match.Indexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Name {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	location := fmt.Sprintf("  %s:%d:%d", match.File, match.Line, match.Column)
	if lipgloss.Width(b.String())+len(location) <= width {
		b.WriteString(hintStyle.Render(location))
	}

	return b.String()
}

// Run shows the picker seeded with query and returns the chosen match. The
// result is false when the user cancels. The interface is drawn on stderr
// unless opts redirect it.
func Run(
	ctx context.Context,
	items []project.Match,
	query string,
	opts ...tea.ProgramOption,
) (project.Match, bool, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr)}, opts...)

	final, err := tea.NewProgram(newModel(items, query), opts...).Run()
	if err != nil {
		return project.Match{}, false, err
	}

	m, ok := final.(model)
	if !ok || m.chosen < 0 {
		return project.Match{}, false, nil
	}

	return m.matches[m.chosen], true, nil
}
