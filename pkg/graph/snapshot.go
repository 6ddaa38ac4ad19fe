package graph

import (
	"slices"
	"strings"

	"github.com/matzehuels/depgraph/pkg/errors"
)

// Snapshot is an immutable, fully validated task graph.
//
// Snapshots are the staging area for imports: decoders build one with
// [NewSnapshot], and only a snapshot that passed every check can be installed
// with [Store.Replace]. The zero value is an empty graph.
type Snapshot struct {
	tasks []Task
	index map[string]int
}

// NewSnapshot validates tasks and returns them as a snapshot.
//
// Checks run in this order, and the first failure is returned:
//
//  1. every id is a valid task id (MALFORMED_INPUT)
//  2. every text is non-empty after trimming (MALFORMED_INPUT naming the task)
//  3. ids are unique (DUPLICATE_ID)
//  4. no task lists itself as a dependency (CYCLE_DETECTED)
//  5. every dependency id names a task in the list (UNKNOWN_DEPENDENCY)
//  6. the dependency relation is acyclic (CYCLE_DETECTED, with the cycle path)
//
// Texts are stored trimmed with LF line breaks, and repeated dependency ids collapse. The input
// slice is not retained.
func NewSnapshot(tasks []Task) (*Snapshot, error) {
	s := &Snapshot{
		tasks: make([]Task, 0, len(tasks)),
		index: make(map[string]int, len(tasks)),
	}

	for i, t := range tasks {
		if err := errors.ValidateTaskID(t.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "task #%d", i+1)
		}
		text := normalizeText(t.Text)
		if text == "" {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput,
				errors.New(errors.ErrCodeEmptyText, "blank text"), "task %q has no text", t.ID)
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateID, "task id %q appears more than once", t.ID)
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, Task{ID: t.ID, Text: text, Dependencies: dedupe(t.Dependencies)})
	}

	for _, t := range s.tasks {
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				return nil, errors.New(errors.ErrCodeCycleDetected, "task %q depends on itself", t.ID)
			}
			if _, ok := s.index[dep]; !ok {
				return nil, errors.New(errors.ErrCodeUnknownDependency, "task %q depends on unknown id %q", t.ID, dep)
			}
		}
	}

	if cycle := FindCycle(s.ids(), s.adjacency()); cycle != nil {
		return nil, errors.New(errors.ErrCodeCycleDetected, "%s", strings.Join(cycle, " -> "))
	}
	return s, nil
}

// Len returns the number of tasks. A nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tasks)
}

// Tasks returns deep copies of the tasks in document order.
func (s *Snapshot) Tasks() []Task {
	if s == nil {
		return nil
	}
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Task returns the task with the given id.
func (s *Snapshot) Task(id string) (Task, bool) {
	if s == nil {
		return Task{}, false
	}
	i, ok := s.index[id]
	if !ok {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Edges returns every dependency edge in task order, then dependency order.
func (s *Snapshot) Edges() []Edge {
	if s == nil {
		return nil
	}
	return collectEdges(s.tasks)
}

// Equal reports whether s and o hold the same tasks in the same order, with the
// same text and the same dependency sets. Dependency order is ignored.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for i, t := range s.tasks {
		u := o.tasks[i]
		if t.ID != u.ID || t.Text != u.Text || len(t.Dependencies) != len(u.Dependencies) {
			return false
		}
		a, b := slices.Clone(t.Dependencies), slices.Clone(u.Dependencies)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

func (s *Snapshot) ids() []string {
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

func (s *Snapshot) adjacency() map[string][]string {
	adj := make(map[string][]string, len(s.tasks))
	for _, t := range s.tasks {
		adj[t.ID] = t.Dependencies
	}
	return adj
}

func collectEdges(tasks []Task) []Edge {
	var edges []Edge
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			edges = append(edges, Edge{From: t.ID, To: dep})
		}
	}
	return edges
}
