package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	depio "github.com/matzehuels/depgraph/pkg/io"
	"github.com/matzehuels/depgraph/pkg/pipeline"
)

// =============================================================================
// import
// =============================================================================

func (c *CLI) importCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the workspace graph with a JSON or CSV document",
		Long: `Replace the workspace graph with the tasks in FILE.

The format is taken from the file extension unless --format is given. The
whole document is validated first: if any task is invalid, the workspace is
left unchanged.`,
		Example: `  depgraph import dependency_graph.json
  depgraph import tasks.txt --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.contextLogger(cmd.Context())
			return c.withSession(ctx, func(s *session) error {
				return runImport(ctx, s, args[0], format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: json or csv (default from extension)")
	return cmd
}

func runImport(ctx context.Context, s *session, path, format string) error {
	prog := newProgress(loggerFromContext(ctx))

	if format == "" {
		snap, err := depio.ImportFile(ctx, s.store, path)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Imported %d tasks", snap.Len()))
		printImported(path, s)
		return nil
	}

	f, err := depio.ParseFormat(format)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	snap, err := depio.Import(ctx, s.store, file, f)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d tasks", snap.Len()))
	printImported(path, s)
	return nil
}

func printImported(path string, s *session) {
	printSuccess("Imported %s into workspace %s", filepath.Base(path), StyleHighlight.Render(s.name))
	printStats(s.store.Len(), s.store.EdgeCount(), nil)
}

// =============================================================================
// export
// =============================================================================

func (c *CLI) exportCommand() *cobra.Command {
	var (
		output    string
		highlight string
		rankdir   string
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "export [json|csv|png|svg|dot]",
		Short: "Export the workspace graph as a document or diagram",
		Long: `Export the workspace graph.

json and csv produce documents that 'depgraph import' reads back. png and svg
render a Graphviz diagram in which arrows point from a task to the tasks it
depends on; dot writes the Graphviz source. Rendered images are cached.

The output file defaults to dependency_graph.<format>. Use -o - for stdout.`,
		Example: `  depgraph export
  depgraph export png --highlight deploy
  depgraph export csv -o tasks.csv`,
		ValidArgs: pipeline.ValidFormats,
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := pipeline.DefaultFormat
			if len(args) == 1 {
				format = args[0]
			}
			ctx := c.contextLogger(cmd.Context())

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if rankdir == "" {
				rankdir = cfg.Render.RankDir
			}

			return c.withSession(ctx, func(s *session) error {
				opts := pipeline.Options{
					Format:  format,
					RankDir: rankdir,
					Refresh: refresh,
					Logger:  c.Logger,
				}
				if strings.TrimSpace(highlight) != "" {
					opts.Highlight = s.store.FilterByText(highlight)
				}
				if err := opts.ValidateAndSetDefaults(); err != nil {
					return err
				}

				runner := c.newRunner(ctx, cfg)
				defer runner.Close()
				return runExport(ctx, runner, s, opts, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default dependency_graph.<format>)")
	cmd.Flags().StringVar(&highlight, "highlight", "", "highlight tasks whose text contains this query")
	cmd.Flags().StringVar(&rankdir, "rankdir", "", "Graphviz rank direction: TB, LR, BT or RL (default from config)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-render even if the image is cached")
	return cmd
}

func runExport(ctx context.Context, runner *pipeline.Runner, s *session, opts pipeline.Options, output string) error {
	var progress *spinner
	if !opts.IsDocument() && output != "-" {
		progress = startSpinner(ctx, "Rendering "+opts.Format+"...")
	}

	result, err := runner.Export(ctx, s.store.Snapshot(), opts)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := stdout.Write(result.Data)
		return err
	}
	if output == "" {
		output = result.Filename()
	}
	if err := depio.WriteFileAtomic(output, result.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Exported %s", strings.ToUpper(result.Format))
	printFile(output)
	var cached *bool
	if result.Cacheable() {
		cached = &result.Cached
	}
	printStats(result.Stats.TaskCount, result.Stats.EdgeCount, cached)
	return nil
}
