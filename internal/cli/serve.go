package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depgraph/internal/httpapi"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace graph over HTTP",
		Long: `Serve the workspace graph as a JSON API.

Every change made through the API is saved to the workspace immediately.
The server stops gracefully on interrupt.`,
		Example: `  depgraph serve --addr :9090
  curl -X POST localhost:9090/tasks -d '{"text": "Write tests"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			runner := c.newRunner(ctx, s.cfg)
			defer runner.Close()

			srv := httpapi.New(httpapi.Options{
				Store:     s.store,
				Workspace: s.ws,
				Name:      s.name,
				Runner:    runner,
				RankDir:   s.cfg.Render.RankDir,
				Logger:    c.Logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
