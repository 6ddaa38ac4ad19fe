package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

type document struct {
	Tasks []task `json:"tasks"`
}

type task struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Dependencies []string `json:"dependencies"`
}

// rawDocument and rawTask mirror document and task for decoding. Pointers
// separate a missing or null key from an empty value.
type rawDocument struct {
	Tasks json.RawMessage `json:"tasks"`
}

type rawTask struct {
	ID           *string   `json:"id"`
	Text         *string   `json:"text"`
	Dependencies *[]*string `json:"dependencies"`
}

// WriteJSON encodes tasks as a JSON document and writes it to w.
// Dependencies are always written as an array, never null, so the output can
// be re-imported with [ReadJSON] unchanged.
func WriteJSON(w io.Writer, tasks []graph.Task) error {
	out := document{Tasks: make([]task, len(tasks))}
	for i, t := range tasks {
		deps := t.Dependencies
		if deps == nil {
			deps = []string{}
		}
		out.Tasks[i] = task{ID: t.ID, Text: t.Text, Dependencies: deps}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON document from r into a validated snapshot.
//
// ReadJSON returns MALFORMED_INPUT if:
//   - The input is not valid JSON or not an object
//   - "tasks" is missing, null, or not an array
//   - An entry is not an object, or lacks a string "id" or "text"
//   - "dependencies" is present but not an array of strings
//
// Structural checks are followed by [graph.NewSnapshot], which reports
// MALFORMED_INPUT for blank text, DUPLICATE_ID, UNKNOWN_DEPENDENCY, and
// CYCLE_DETECTED.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read JSON document")
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "invalid JSON document")
	}
	if len(doc.Tasks) == 0 || bytes.Equal(doc.Tasks, []byte("null")) {
		return nil, errors.New(errors.ErrCodeMalformedInput, `missing "tasks" array`)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(doc.Tasks, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, `"tasks" must be an array`)
	}

	tasks := make([]graph.Task, 0, len(entries))
	for i, raw := range entries {
		var rt rawTask
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "task #%d", i+1)
		}
		if rt.ID == nil {
			return nil, errors.New(errors.ErrCodeMalformedInput, `task #%d: missing string "id"`, i+1)
		}
		if rt.Text == nil {
			return nil, errors.New(errors.ErrCodeMalformedInput, `task %q: missing string "text"`, *rt.ID)
		}
		t := graph.Task{ID: *rt.ID, Text: *rt.Text}
		if rt.Dependencies != nil {
			t.Dependencies = make([]string, len(*rt.Dependencies))
			for j, dep := range *rt.Dependencies {
				if dep == nil {
					return nil, errors.New(errors.ErrCodeMalformedInput, `task %q: dependency #%d is null`, *rt.ID, j+1)
				}
				t.Dependencies[j] = *dep
			}
		}
		tasks = append(tasks, t)
	}

	return graph.NewSnapshot(tasks)
}
