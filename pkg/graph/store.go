package graph

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/observability"
)

// EventKind identifies the mutation that produced an [Event].
type EventKind string

const (
	EventAdd        EventKind = "add"        // a task was created
	EventDependency EventKind = "dependency" // an edge was added or removed
	EventReset      EventKind = "reset"      // the graph was cleared
	EventReplace    EventKind = "replace"    // the graph was replaced by an import
)

// Event is delivered to observers after each successful mutation.
type Event struct {
	Kind    EventKind
	Version uint64 // store version after the mutation
}

// Option configures a [Store].
type Option func(*Store)

// WithIDGenerator replaces the UUID generator used for new task ids.
// Generated ids that are already taken or were issued before are skipped, so a
// generator only needs to produce fresh values eventually.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store holds the authoritative task graph.
//
// The zero value is not usable - use [NewStore].
type Store struct {
	mu      sync.RWMutex
	tasks   map[string]*Task
	order   []string
	issued  map[string]struct{} // every id the store has ever held
	version uint64
	newID   func() string

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks:     make(map[string]*Task),
		issued:    make(map[string]struct{}),
		newID:     uuid.NewString,
		observers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask creates a task with the given text and prerequisites and returns it.
//
// Returns EMPTY_TEXT if text is blank after trimming, or UNKNOWN_DEPENDENCY if
// any id in deps is not in the store. Repeated ids in deps collapse. A new task
// cannot close a cycle: nothing can depend on an id that did not exist yet.
func (s *Store) AddTask(text string, deps []string) (Task, error) {
	start := time.Now()
	text = normalizeText(text)

	s.mu.Lock()
	if text == "" {
		s.mu.Unlock()
		return Task{}, s.reject("add", start, errors.New(errors.ErrCodeEmptyText, "task text is empty"))
	}
	deps = dedupe(deps)
	for _, dep := range deps {
		if _, ok := s.tasks[dep]; !ok {
			s.mu.Unlock()
			return Task{}, s.reject("add", start, errors.New(errors.ErrCodeUnknownDependency, "unknown dependency %q", dep))
		}
	}

	t := &Task{ID: s.freshID(), Text: text, Dependencies: deps}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	s.issued[t.ID] = struct{}{}
	out := t.Clone()
	ev := s.bump(EventAdd)
	s.mu.Unlock()

	s.commit("add", start, ev)
	return out, nil
}

// AddDependency adds the edge from → to, meaning task from requires task to.
//
// Returns UNKNOWN_TASK if from is missing, UNKNOWN_DEPENDENCY if to is missing,
// SELF_DEPENDENCY if they are equal, and CYCLE_DETECTED if to already depends on
// from (directly or transitively). Adding an existing edge is a no-op and does
// not change the version.
func (s *Store) AddDependency(from, to string) error {
	start := time.Now()

	s.mu.Lock()
	t, err := s.checkEdge(from, to)
	if err != nil {
		s.mu.Unlock()
		return s.reject("add_dependency", start, err)
	}
	if t.DependsOn(to) {
		s.mu.Unlock()
		return nil
	}
	if s.wouldCreateCycle(from, to) {
		s.mu.Unlock()
		return s.reject("add_dependency", start, errors.New(errors.ErrCodeCycleDetected, "%q already depends on %q", to, from))
	}
	t.Dependencies = append(t.Dependencies, to)
	ev := s.bump(EventDependency)
	s.mu.Unlock()

	s.commit("add_dependency", start, ev)
	return nil
}

// RemoveDependency removes the edge from → to.
// Returns UNKNOWN_TASK if from is missing. Removing an absent edge is a no-op.
func (s *Store) RemoveDependency(from, to string) error {
	start := time.Now()

	s.mu.Lock()
	t, ok := s.tasks[from]
	if !ok {
		s.mu.Unlock()
		return s.reject("remove_dependency", start, errors.New(errors.ErrCodeUnknownTask, "unknown task %q", from))
	}
	i := slices.Index(t.Dependencies, to)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	t.Dependencies = slices.Delete(t.Dependencies, i, i+1)
	ev := s.bump(EventDependency)
	s.mu.Unlock()

	s.commit("remove_dependency", start, ev)
	return nil
}

// ToggleDependency removes the edge from → to if present and adds it otherwise.
// It reports whether the edge exists afterwards. Errors are those of
// [Store.AddDependency]. The check and the change happen under one lock, so
// concurrent toggles of the same edge alternate.
func (s *Store) ToggleDependency(from, to string) (bool, error) {
	start := time.Now()

	s.mu.Lock()
	t, err := s.checkEdge(from, to)
	if err != nil {
		s.mu.Unlock()
		return false, s.reject("toggle_dependency", start, err)
	}
	if i := slices.Index(t.Dependencies, to); i >= 0 {
		t.Dependencies = slices.Delete(t.Dependencies, i, i+1)
		ev := s.bump(EventDependency)
		s.mu.Unlock()

		s.commit("remove_dependency", start, ev)
		return false, nil
	}
	if s.wouldCreateCycle(from, to) {
		s.mu.Unlock()
		return false, s.reject("toggle_dependency", start, errors.New(errors.ErrCodeCycleDetected, "%q already depends on %q", to, from))
	}
	t.Dependencies = append(t.Dependencies, to)
	ev := s.bump(EventDependency)
	s.mu.Unlock()

	s.commit("add_dependency", start, ev)
	return true, nil
}

// RemoveAllTasks clears the graph in one step. Ids issued so far stay retired.
func (s *Store) RemoveAllTasks() {
	start := time.Now()

	s.mu.Lock()
	s.tasks = make(map[string]*Task)
	s.order = nil
	ev := s.bump(EventReset)
	s.mu.Unlock()

	s.commit("reset", start, ev)
}

// Replace installs snap as the whole graph, discarding the current one.
// snap has already been validated by [NewSnapshot], so Replace cannot fail.
// A nil snapshot clears the graph.
func (s *Store) Replace(snap *Snapshot) {
	start := time.Now()
	tasks := snap.Tasks()

	s.mu.Lock()
	s.tasks = make(map[string]*Task, len(tasks))
	s.order = make([]string, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
		s.issued[t.ID] = struct{}{}
	}
	ev := s.bump(EventReplace)
	s.mu.Unlock()

	s.commit("replace", start, ev)
}

// Tasks returns copies of all tasks in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.order))
	for i, id := range s.order {
		out[i] = s.tasks[id].Clone()
	}
	return out
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.Clone(), true
}

// Edges returns one edge per (dependent, prerequisite) pair, in task insertion
// order and then dependency order.
func (s *Store) Edges() []Edge {
	return collectEdges(s.Tasks())
}

// FilterByText returns the ids of tasks whose text contains query, ignoring
// case. A blank query matches every task. Ids come back in insertion order.
func (s *Store) FilterByText(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if q == "" || strings.Contains(strings.ToLower(s.tasks[id].Text), q) {
			ids = append(ids, id)
		}
	}
	return ids
}

// WouldCreateCycle reports whether adding the edge from → to would close a
// cycle, that is whether from is already reachable from to. An edge from a task
// to itself always would.
func (s *Store) WouldCreateCycle(from, to string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wouldCreateCycle(from, to)
}

// Snapshot returns an immutable copy of the current graph.
func (s *Store) Snapshot() *Snapshot {
	tasks := s.Tasks()
	snap := &Snapshot{tasks: tasks, index: make(map[string]int, len(tasks))}
	for i, t := range tasks {
		snap.index[t.ID] = i
	}
	return snap
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// EdgeCount returns the number of dependency edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tasks {
		n += len(t.Dependencies)
	}
	return n
}

// Version returns a counter that increases with every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to be called after each successful mutation and returns
// a function that unregisters it.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

// checkEdge validates the endpoints of a new edge. Caller holds s.mu.
func (s *Store) checkEdge(from, to string) (*Task, error) {
	t, ok := s.tasks[from]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownTask, "unknown task %q", from)
	}
	if _, ok := s.tasks[to]; !ok {
		return nil, errors.New(errors.ErrCodeUnknownDependency, "unknown dependency %q", to)
	}
	if from == to {
		return nil, errors.New(errors.ErrCodeSelfDependency, "task %q cannot depend on itself", from)
	}
	return t, nil
}

// wouldCreateCycle is WouldCreateCycle without locking. Caller holds s.mu.
func (s *Store) wouldCreateCycle(from, to string) bool {
	return reachable(func(id string) []string {
		if t, ok := s.tasks[id]; ok {
			return t.Dependencies
		}
		return nil
	}, to, from)
}

// freshID returns an id that is neither present nor previously issued.
// Caller holds s.mu.
func (s *Store) freshID() string {
	for {
		id := s.newID()
		if errors.ValidateTaskID(id) != nil {
			continue
		}
		if _, used := s.issued[id]; !used {
			return id
		}
	}
}

// bump increments the version. Caller holds s.mu.
func (s *Store) bump(kind EventKind) Event {
	s.version++
	return Event{Kind: kind, Version: s.version}
}

// commit reports a successful mutation to hooks and observers.
// It runs after s.mu is released so observers may read the store.
func (s *Store) commit(op string, start time.Time, ev Event) {
	observability.Store().OnMutation(op, ev.Version, time.Since(start), nil)

	s.obsMu.Lock()
	fns := make([]func(Event), 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if fn, ok := s.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// reject reports a failed mutation to hooks and returns err unchanged.
func (s *Store) reject(op string, start time.Time, err error) error {
	observability.Store().OnMutation(op, s.Version(), time.Since(start), err)
	return err
}
