package graph

import (
	"slices"
	"strings"
)

// Task is a node of the dependency graph.
type Task struct {
	ID           string   // Opaque unique identifier, immutable
	Text         string   // User-supplied label, non-empty after trimming
	Dependencies []string // Ids of prerequisite tasks, in insertion order
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.Dependencies = slices.Clone(t.Dependencies)
	return t
}

// DependsOn reports whether t lists id as a direct prerequisite.
func (t Task) DependsOn(id string) bool {
	return slices.Contains(t.Dependencies, id)
}

// Edge is a dependency edge from a dependent task to its prerequisite.
type Edge struct {
	From string // Dependent task id
	To   string // Prerequisite task id
}

// lineBreaks folds CR LF and lone CR into LF, the only line break a quoted CSV
// field carries unchanged.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// normalizeText trims surrounding whitespace from a task label and folds its
// line breaks to LF.
func normalizeText(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}

// dedupe returns ids with repeated entries removed, keeping first occurrences.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
