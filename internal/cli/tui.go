package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listFocusStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit the workspace graph in an interactive checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				changes := 0
				cancel := s.store.Subscribe(func(graph.Event) { changes++ })
				defer cancel()

				p := tea.NewProgram(NewChecklistModel(s.store, s.name),
					tea.WithAltScreen(),
					tea.WithContext(cmd.Context()),
					tea.WithInput(c.in))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("run checklist: %w", err)
				}
				if changes > 0 {
					printSuccess("Saved %s to workspace %s", plural(changes, "change"), StyleHighlight.Render(s.name))
				}
				return nil
			})
		},
	}
}

// =============================================================================
// ChecklistModel - Interactive graph editing
// =============================================================================

type checklistMode int

const (
	modeBrowse checklistMode = iota
	modeInput
	modeSearch
	modeConfirmReset
)

// ChecklistModel is the bubbletea model for the interactive checklist.
//
// Every task has a checkbox; checked tasks become the prerequisites of the
// next task added from the input line. Enter on a task selects it, after
// which x toggles whether the selected task depends on the task under the
// cursor.
type ChecklistModel struct {
	store     *graph.Store
	workspace string

	mode    checklistMode
	input   string
	query   string
	checked map[string]bool
	focus   string

	Cursor int
	Offset int
	Height int

	status    string
	statusErr bool
}

// NewChecklistModel creates a checklist over store.
func NewChecklistModel(store *graph.Store, workspace string) ChecklistModel {
	return ChecklistModel{
		store:     store,
		workspace: workspace,
		checked:   make(map[string]bool),
		Height:    15,
	}
}

func (m ChecklistModel) Init() tea.Cmd {
	return nil
}

// visible returns the ids shown under the current search.
func (m ChecklistModel) visible() []string {
	return m.store.FilterByText(m.query)
}

func (m ChecklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmReset:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.clampCursor()
	}
	return m, nil
}

func (m ChecklistModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := m.visible()
	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(ids)-1 {
			m.Cursor++
		}
	case " ", "space":
		if id, ok := m.current(ids); ok {
			if m.checked[id] {
				delete(m.checked, id)
			} else {
				m.checked[id] = true
			}
		}
	case "enter":
		if id, ok := m.current(ids); ok {
			if m.focus == id {
				m.focus = ""
			} else {
				m.focus = id
			}
		}
	case "x":
		m.toggleEdge(ids)
	case "a", "i", "tab":
		m.mode = modeInput
	case "/":
		m.mode = modeSearch
	case "R":
		if m.store.Len() > 0 {
			m.mode = modeConfirmReset
		}
	case "esc":
		m.focus = ""
		clear(m.checked)
	}
	m.clampCursor()
	return m, nil
}

// toggleEdge makes the selected task depend on the task under the cursor, or
// removes that dependency.
func (m *ChecklistModel) toggleEdge(ids []string) {
	if m.focus == "" {
		m.setError("Select a task with enter first")
		return
	}
	to, ok := m.current(ids)
	if !ok {
		return
	}
	added, err := m.store.ToggleDependency(m.focus, to)
	if err != nil {
		m.setError(errors.UserMessage(err))
		return
	}
	from, _ := m.store.Task(m.focus)
	dep, _ := m.store.Task(to)
	if added {
		m.setStatus(fmt.Sprintf("%s now depends on %s", from.Text, dep.Text))
	} else {
		m.setStatus(fmt.Sprintf("%s no longer depends on %s", from.Text, dep.Text))
	}
}

func (m ChecklistModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		t, err := m.store.AddTask(m.input, m.checkedIDs())
		if err != nil {
			m.setError(errors.UserMessage(err))
			return m, nil
		}
		m.input = ""
		clear(m.checked)
		m.mode = modeBrowse
		m.setStatus("Added " + t.Text)
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.status = ""
	case tea.KeyBackspace:
		m.input = dropLastRune(m.input)
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m ChecklistModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
	case tea.KeyEsc:
		m.query = ""
		m.mode = modeBrowse
	case tea.KeyBackspace:
		m.query = dropLastRune(m.query)
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	m.Cursor, m.Offset = 0, 0
	return m, nil
}

func (m ChecklistModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	switch msg.String() {
	case "y", "Y":
		n := m.store.Len()
		m.store.RemoveAllTasks()
		m.focus = ""
		clear(m.checked)
		m.Cursor, m.Offset = 0, 0
		m.setStatus("Removed " + plural(n, "task"))
	default:
		m.setStatus("Reset cancelled")
	}
	return m, nil
}

// checkedIDs returns the checked tasks in insertion order.
func (m ChecklistModel) checkedIDs() []string {
	var ids []string
	for _, t := range m.store.Tasks() {
		if m.checked[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (m ChecklistModel) current(ids []string) (string, bool) {
	if m.Cursor < 0 || m.Cursor >= len(ids) {
		return "", false
	}
	return ids[m.Cursor], true
}

// clampCursor keeps the cursor on a visible row and scrolls to it.
func (m *ChecklistModel) clampCursor() {
	n := len(m.visible())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *ChecklistModel) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *ChecklistModel) setError(s string) {
	m.status, m.statusErr = s, true
}

func (m ChecklistModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("depgraph") + listDimStyle.Render(" · "+m.workspace))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.help()))
	b.WriteString("\n\n")

	prompt := listDimStyle.Render("New task: ")
	if m.mode == modeInput {
		prompt = listSelectedStyle.Render("New task: ")
		b.WriteString(prompt + m.input + "█")
	} else {
		b.WriteString(prompt + listDimStyle.Render(m.input))
	}
	b.WriteString("\n")
	if m.mode == modeSearch || m.query != "" {
		cursor := ""
		if m.mode == modeSearch {
			cursor = "█"
		}
		b.WriteString(listDimStyle.Render("Search:   ") + m.query + cursor)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	tasks := m.store.Tasks()
	numbers := taskNumbers(tasks)
	byID := make(map[string]graph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	ids := m.visible()
	if len(ids) == 0 {
		if len(tasks) == 0 {
			b.WriteString(listDimStyle.Render("  No tasks yet. Press a to add one."))
		} else {
			b.WriteString(listDimStyle.Render("  No tasks match."))
		}
		b.WriteString("\n")
	}

	end := min(m.Offset+m.Height, len(ids))
	for i := m.Offset; i < end; i++ {
		t := byID[ids[i]]

		cursor := "  "
		if i == m.Cursor && m.mode == modeBrowse {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.checked[t.ID] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %3s %s", cursor, box, fmt.Sprintf("#%d", numbers[t.ID]), t.Text)
		if len(t.Dependencies) > 0 {
			deps := make([]string, len(t.Dependencies))
			for j, dep := range t.Dependencies {
				deps[j] = fmt.Sprintf("#%d", numbers[dep])
			}
			line += listDimStyle.Render("  " + iconArrow + " " + strings.Join(deps, " "))
		}

		switch {
		case t.ID == m.focus:
			b.WriteString(listFocusStyle.Render(line))
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %s", plural(len(tasks), "task"), plural(m.store.EdgeCount(), "dependency"))))
	b.WriteString("\n")

	switch {
	case m.mode == modeConfirmReset:
		b.WriteString(StyleWarning.Render("Clear all tasks? [y/N]"))
	case m.statusErr:
		b.WriteString(StyleError.Render(iconError + " " + m.status))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.status))
	}
	return b.String()
}

func (m ChecklistModel) help() string {
	switch m.mode {
	case modeInput:
		return "type a task  ⏎ add with checked prerequisites  esc back"
	case modeSearch:
		return "type to filter  ⏎ keep filter  esc clear"
	case modeConfirmReset:
		return "y confirm  any other key cancel"
	}
	if m.focus != "" {
		return "↑/↓ navigate  x toggle dependency of selected  ⏎ unselect  esc clear  q quit"
	}
	return "↑/↓ navigate  space check  a add  ⏎ select  / search  R reset  q quit"
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
