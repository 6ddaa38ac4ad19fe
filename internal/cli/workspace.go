package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depgraph/pkg/workspace"
)

// workspaceCommand creates the workspace management command.
func (c *CLI) workspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage saved workspaces",
		Long: `Manage saved workspaces.

Every command works on one named workspace, chosen with --workspace or the
config file. A workspace is created the first time a command changes it.`,
	}

	cmd.AddCommand(c.workspaceListCommand())
	cmd.AddCommand(c.workspaceRemoveCommand())

	return cmd
}

func (c *CLI) workspaceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved workspaces",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ws, err := workspace.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer ws.Close()

			names, err := ws.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No saved workspaces")
				return nil
			}
			for _, name := range names {
				marker := "  "
				if name == cfg.Workspace.Name {
					marker = StyleHighlight.Render("* ")
				}
				fmt.Fprintln(stdout, marker+name)
			}
			return nil
		},
	}
}

func (c *CLI) workspaceRemoveCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ws, err := workspace.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer ws.Close()

			name := args[0]
			if !yes && !c.confirm(fmt.Sprintf("Delete workspace %q?", name)) {
				printInfo("Cancelled")
				return nil
			}
			if err := ws.Delete(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess("Deleted workspace %s", StyleHighlight.Render(name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
