package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depgraph/pkg/buildinfo"
	"github.com/matzehuels/depgraph/pkg/cache"
	"github.com/matzehuels/depgraph/pkg/config"
	"github.com/matzehuels/depgraph/pkg/observability"
	"github.com/matzehuels/depgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completion scripts.
const appName = "depgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// in is read by confirmation prompts.
	in io.Reader

	// Persistent flags.
	configPath string
	workspace  string
	noCache    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		in:     os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "depgraph tracks tasks and the tasks they depend on",
		Long: `depgraph keeps a list of tasks in which any task may depend on others.
Dependencies never form a cycle, so the list always has a valid order.
Graphs are saved to a named workspace between runs and can be exported
as JSON, CSV or a Graphviz diagram.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/depgraph/config.toml)")
	flags.StringVarP(&c.workspace, "workspace", "w", "", "workspace name (default from config)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the rendered image cache")

	// Register all subcommands
	root.AddCommand(c.addCommand())
	root.AddCommand(c.depCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.edgesCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.workspaceCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// registerHooks routes store, codec and cache events to the debug log.
func (c *CLI) registerHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetStoreHooks(h)
	observability.SetCodecHooks(h)
	observability.SetCacheHooks(h)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once, applying the --workspace override.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path, err := c.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if c.workspace != "" {
		cfg.Workspace.Name = c.workspace
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	c.Logger.Debug("loaded config", "path", path, "backend", cfg.Workspace.Backend, "workspace", cfg.Workspace.Name)
	c.cfg = cfg
	return cfg, nil
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.Path()
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an export runner. Images are cached in Redis when the
// workspace lives there, on disk otherwise.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(ctx, cfg), cfg.Render.CacheTTL.Duration, c.Logger)
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if c.noCache || !cfg.Render.Cache {
		return cache.NewNullCache()
	}
	if cfg.Workspace.Backend == config.BackendRedis {
		rc, err := cache.DialRedisCache(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache()
		}
		return cache.Instrument(rc)
	}
	dir, err := config.CacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache()
	}
	return cache.Instrument(fc)
}

// contextLogger attaches the CLI logger to ctx.
func (c *CLI) contextLogger(ctx context.Context) context.Context {
	return withLogger(ctx, c.Logger)
}
