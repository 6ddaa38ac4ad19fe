package cli

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/depgraph/pkg/graph"
)

func newTestStore() *graph.Store {
	n := 0
	return graph.NewStore(graph.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}))
}

// press feeds keys to m. Single characters are sent as runes; named keys
// ("enter", "esc", "space", "backspace", "down", "up", "ctrl+c") as key types.
func press(t *testing.T, m ChecklistModel, keys ...string) ChecklistModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ChecklistModel)
	}
	return m
}

// typeText enters text into the current input line one rune at a time.
func typeText(t *testing.T, m ChecklistModel, text string) ChecklistModel {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m = press(t, m, "space")
		} else {
			m = press(t, m, string(r))
		}
	}
	return m
}

func TestChecklistAddTask(t *testing.T) {
	store := newTestStore()
	m := NewChecklistModel(store, "test")

	m = press(t, m, "a")
	m = typeText(t, m, "Write tests")
	m = press(t, m, "enter")

	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Write tests" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if m.mode != modeBrowse || m.input != "" {
		t.Errorf("after add: mode=%v input=%q", m.mode, m.input)
	}
}

func TestChecklistAddEmpty(t *testing.T) {
	store := newTestStore()
	m := NewChecklistModel(store, "test")

	m = press(t, m, "a", "space", "enter")

	if store.Len() != 0 {
		t.Error("blank task was added")
	}
	if m.status != "Please enter a task name" || !m.statusErr {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
	if !strings.Contains(m.View(), "Please enter a task name") {
		t.Error("View() does not show the empty-text message")
	}
}

func TestChecklistAddWithCheckedPrerequisites(t *testing.T) {
	store := newTestStore()
	store.AddTask("Design", nil)
	store.AddTask("Build", nil)
	m := NewChecklistModel(store, "test")

	// Check both tasks, then add a third.
	m = press(t, m, "space", "down", "space", "a")
	m = typeText(t, m, "Ship")
	m = press(t, m, "enter")

	ship, ok := store.Task("t3")
	if !ok {
		t.Fatal("Ship was not added")
	}
	if len(ship.Dependencies) != 2 || ship.Dependencies[0] != "t1" || ship.Dependencies[1] != "t2" {
		t.Errorf("Ship dependencies = %v, want [t1 t2]", ship.Dependencies)
	}
	if len(m.checked) != 0 {
		t.Errorf("checkboxes not cleared: %v", m.checked)
	}
}

func TestChecklistInputEditing(t *testing.T) {
	m := NewChecklistModel(newTestStore(), "test")
	m = press(t, m, "a")
	m = typeText(t, m, "héllo")
	m = press(t, m, "backspace", "backspace")
	if m.input != "hél" {
		t.Errorf("input = %q, want %q", m.input, "hél")
	}

	// Browse keys are plain text while typing.
	m = press(t, m, "q", "j", "R")
	if m.input != "hélqjR" || m.mode != modeInput {
		t.Errorf("input = %q mode = %v", m.input, m.mode)
	}

	m = press(t, m, "esc")
	if m.mode != modeBrowse || m.input != "hélqjR" {
		t.Errorf("esc: mode = %v input = %q", m.mode, m.input)
	}
}

func TestChecklistToggleEdge(t *testing.T) {
	store := newTestStore()
	store.AddTask("Design", nil)
	store.AddTask("Build", nil)
	m := NewChecklistModel(store, "test")

	// Without a selection x reports an error.
	m = press(t, m, "x")
	if !m.statusErr {
		t.Error("x without selection should report an error")
	}

	// Select Build, move to Design, toggle.
	m = press(t, m, "down", "enter", "up", "x")
	if b, _ := store.Task("t2"); !b.DependsOn("t1") {
		t.Fatalf("Build should depend on Design: %+v", b)
	}

	// Cycle is rejected with a message and no change.
	version := store.Version()
	m = press(t, m, "down", "enter", "up", "enter", "down", "x")
	if m.focus != "t1" {
		t.Fatalf("focus = %q, want t1", m.focus)
	}
	if store.Version() != version || !m.statusErr {
		t.Errorf("cycle accepted or not reported: status %q", m.status)
	}

	// Toggling again removes the edge.
	m = press(t, m, "esc", "down", "enter", "up", "x")
	if b, _ := store.Task("t2"); b.DependsOn("t1") {
		t.Error("second toggle should remove the dependency")
	}
}

func TestChecklistSearch(t *testing.T) {
	store := newTestStore()
	store.AddTask("Write docs", nil)
	store.AddTask("Write code", nil)
	store.AddTask("Review", nil)
	m := NewChecklistModel(store, "test")

	m = press(t, m, "/")
	m = typeText(t, m, "CODE")
	m = press(t, m, "enter")

	if got := m.visible(); len(got) != 1 || got[0] != "t2" {
		t.Errorf("visible = %v, want [t2]", got)
	}
	view := m.View()
	if strings.Contains(view, "Review") || !strings.Contains(view, "Write code") {
		t.Errorf("View() does not hide non-matches:\n%s", view)
	}

	m = press(t, m, "/", "esc")
	if len(m.visible()) != 3 {
		t.Errorf("esc should clear the search, visible = %v", m.visible())
	}
}

func TestChecklistReset(t *testing.T) {
	store := newTestStore()
	store.AddTask("Design", nil)
	m := NewChecklistModel(store, "test")

	m = press(t, m, "R")
	if !strings.Contains(m.View(), "Clear all tasks?") {
		t.Error("reset prompt not shown")
	}
	m = press(t, m, "n")
	if store.Len() != 1 {
		t.Fatal("declined reset removed tasks")
	}

	m = press(t, m, "R", "y")
	if store.Len() != 0 {
		t.Error("confirmed reset kept tasks")
	}
	if m.mode != modeBrowse {
		t.Errorf("mode = %v after reset", m.mode)
	}
}

func TestChecklistQuit(t *testing.T) {
	m := NewChecklistModel(newTestStore(), "test")
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Errorf("%v: expected quit command", key)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: command is not tea.Quit", key)
		}
	}
}

func TestChecklistCursorBounds(t *testing.T) {
	store := newTestStore()
	store.AddTask("One", nil)
	store.AddTask("Two", nil)
	m := NewChecklistModel(store, "test")

	m = press(t, m, "up", "up")
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.Cursor)
	}
	m = press(t, m, "j", "j", "j")
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after down past end", m.Cursor)
	}
}
