package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depgraph/pkg/graph"
)

// =============================================================================
// add
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var deps []string

	cmd := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Long: `Add a task to the workspace.

The arguments are joined into the task text. Prerequisites are given with
--dep and may be a task id, an id prefix or a list number from 'depgraph list'.`,
		Example: `  depgraph add Write the report
  depgraph add "Send the report" --dep 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				tasks := s.store.Tasks()
				ids, err := resolveDependencies(tasks, deps)
				if err != nil {
					return err
				}
				t, err := s.store.AddTask(strings.Join(args, " "), ids)
				if err != nil {
					return err
				}
				printSuccess("Added #%d %s", len(tasks)+1, StyleValue.Render(t.Text))
				printDetail("id %s", t.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVarP(&deps, "dep", "d", nil, "prerequisite task (repeatable)")
	return cmd
}

// =============================================================================
// dep
// =============================================================================

func (c *CLI) depCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Edit dependencies between tasks",
		Long: `Edit dependencies between tasks.

"dep add A B" makes task A depend on task B. A dependency that would
create a cycle is rejected and the graph is left unchanged.`,
	}

	cmd.AddCommand(c.depEditCommand("add", "Make a task depend on another", func(s *session, from, to string) (string, error) {
		return "now depends on", s.store.AddDependency(from, to)
	}))
	cmd.AddCommand(c.depEditCommand("rm", "Remove a dependency", func(s *session, from, to string) (string, error) {
		return "no longer depends on", s.store.RemoveDependency(from, to)
	}))
	cmd.AddCommand(c.depEditCommand("toggle", "Add the dependency if absent, remove it otherwise", func(s *session, from, to string) (string, error) {
		added, err := s.store.ToggleDependency(from, to)
		if added {
			return "now depends on", err
		}
		return "no longer depends on", err
	}))

	return cmd
}

// depEditCommand builds a "dep <name> FROM TO" subcommand around edit, which
// returns the verb phrase describing the result.
func (c *CLI) depEditCommand(name, short string, edit func(s *session, from, to string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " TASK PREREQUISITE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				tasks := s.store.Tasks()
				from, err := resolveTask(tasks, args[0])
				if err != nil {
					return err
				}
				to, err := resolveDependencies(tasks, args[1:])
				if err != nil {
					return err
				}
				verb, err := edit(s, from, to[0])
				if err != nil {
					return err
				}
				numbers := taskNumbers(tasks)
				printSuccess("#%d %s #%d", numbers[from], verb, numbers[to[0]])
				return nil
			})
		},
	}
}

// =============================================================================
// list, edges, search
// =============================================================================

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in insertion order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				tasks := s.store.Tasks()
				printTaskTable(tasks, s.store.FilterByText(""))
				printStats(len(tasks), s.store.EdgeCount(), nil)
				return nil
			})
		},
	}
}

func (c *CLI) edgesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edges",
		Short: "List every dependency as TASK → PREREQUISITE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				printEdges(s.store.Tasks(), s.store.Edges())
				return nil
			})
		},
	}
}

func (c *CLI) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Show tasks whose text contains QUERY (case-insensitive)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				matches := s.store.FilterByText(strings.Join(args, " "))
				printTaskTable(s.store.Tasks(), matches)
				printDetail("%d of %s", len(matches), plural(s.store.Len(), "task"))
				return nil
			})
		},
	}
}

func printEdges(tasks []graph.Task, edges []graph.Edge) {
	if len(edges) == 0 {
		printInfo("No dependencies")
		return
	}
	numbers := taskNumbers(tasks)
	texts := make(map[string]string, len(tasks))
	for _, t := range tasks {
		texts[t.ID] = t.Text
	}
	for _, e := range edges {
		fmt.Fprintf(stdout, "%s %s %s %s %s\n",
			StyleDim.Render(fmt.Sprintf("#%d", numbers[e.From])), texts[e.From],
			StyleHighlight.Render(iconArrow),
			StyleDim.Render(fmt.Sprintf("#%d", numbers[e.To])), texts[e.To])
	}
}

// =============================================================================
// reset
// =============================================================================

func (c *CLI) resetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				n := s.store.Len()
				if n == 0 {
					printInfo("Nothing to reset")
					return nil
				}
				if !yes && !c.confirm("Clear all tasks?") {
					printInfo("Cancelled")
					return nil
				}
				s.store.RemoveAllTasks()
				printSuccess("Removed %s", plural(n, "task"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on stdout and reads the answer from c.in.
// Anything but "y" or "yes" declines.
func (c *CLI) confirm(question string) bool {
	fmt.Fprint(stdout, StyleWarning.Render(question)+" "+StyleDim.Render("[y/N]")+" ")
	line, _ := bufio.NewReader(c.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
