package graph_test

import (
	"fmt"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

func ExampleStore() {
	s := graph.NewStore()
	a, _ := s.AddTask("Task A", nil)
	b, _ := s.AddTask("Task B", []string{a.ID})

	fmt.Println("Tasks:", len(s.Tasks()))
	fmt.Println("Edges:", len(s.Edges()))
	fmt.Println("B depends on A:", b.DependsOn(a.ID))
	// Output:
	// Tasks: 2
	// Edges: 1
	// B depends on A: true
}

func ExampleStore_AddDependency() {
	s := graph.NewStore()
	a, _ := s.AddTask("Design", nil)
	b, _ := s.AddTask("Build", []string{a.ID})

	// Design depending on Build would close the loop Build -> Design -> Build.
	err := s.AddDependency(a.ID, b.ID)
	fmt.Println(errors.GetCode(err))
	fmt.Println("Edges:", s.EdgeCount())
	// Output:
	// CYCLE_DETECTED
	// Edges: 1
}

func ExampleNewSnapshot() {
	_, err := graph.NewSnapshot([]graph.Task{
		{ID: "t1", Text: "Imported Task 1"},
		{ID: "t2", Text: "Imported Task 2", Dependencies: []string{"t3"}},
	})
	fmt.Println(errors.GetCode(err))
	// Output:
	// UNKNOWN_DEPENDENCY
}
