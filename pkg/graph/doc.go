// Package graph provides the task dependency graph: tasks, the dependency edges
// between them, and the invariants every mutation must preserve.
//
// # Overview
//
// A [Task] is a named unit of work with an opaque id. A task lists the ids of
// the tasks it depends on; each entry is a dependency edge pointing from the
// dependent task to its prerequisite. The [Store] owns the authoritative set of
// tasks and guarantees, after every mutation, that:
//
//   - every dependency id refers to a task in the store
//   - no task depends on itself, directly or transitively
//   - every task has non-empty text after trimming
//
// # Basic Usage
//
//	s := graph.NewStore()
//	a, _ := s.AddTask("Task A", nil)
//	b, _ := s.AddTask("Task B", []string{a.ID})
//	fmt.Println(s.Edges()) // [{b.ID a.ID}]
//
// Edges are added after creation with [Store.AddDependency] and removed with
// [Store.RemoveDependency]. An edge that would close a cycle is rejected with
// CYCLE_DETECTED and the store is left untouched.
//
// # Staging and Atomic Replace
//
// Imports never mutate the store while they validate. A decoder builds a
// [Snapshot] with [NewSnapshot], which runs every check (unique ids, resolvable
// references, acyclicity) on a private copy. Only a fully valid snapshot can be
// installed with [Store.Replace], which swaps the whole graph in one step.
//
// # Identifiers
//
// The store generates a UUID for each new task. Ids are never reissued: the
// store remembers every id it has held, including ids that arrived through
// [Store.Replace] and ids cleared by [Store.RemoveAllTasks].
//
// # Observers
//
// Adapters that render the graph register with [Store.Subscribe] and receive an
// [Event] after each successful mutation, carrying the new version. Rejected
// mutations emit nothing.
//
// # Concurrency
//
// The store serializes mutations with a mutex, so each one completes before the
// next begins. Observers run after the lock is released and may read the store.
package graph
