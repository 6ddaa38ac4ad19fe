package cli

import (
	"strconv"
	"strings"

	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

// resolveTask finds the task a user refers to. A reference is, in order of
// precedence:
//   - an exact task id
//   - a list number, with or without a leading "#" (as shown by `list`)
//   - a unique prefix of a task id
func resolveTask(tasks []graph.Task, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New(errors.ErrCodeUnknownTask, "empty task reference")
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
	}

	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n < 1 || n > len(tasks) {
			return "", errors.New(errors.ErrCodeUnknownTask, "no task #%d (have %d)", n, len(tasks))
		}
		return tasks[n-1].ID, nil
	}

	var match string
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match != "" {
			return "", errors.New(errors.ErrCodeUnknownTask, "%q matches more than one task", ref)
		}
		match = t.ID
	}
	if match == "" {
		return "", errors.New(errors.ErrCodeUnknownTask, "no task matches %q", ref)
	}
	return match, nil
}

// resolveDependencies resolves refs as prerequisites. Unresolvable
// references are reported as UNKNOWN_DEPENDENCY.
func resolveDependencies(tasks []graph.Task, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveTask(tasks, ref)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownDependency, err, "dependency %q", ref)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
