package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depgraph/pkg/cache"
	"github.com/matzehuels/depgraph/pkg/graph"
	depio "github.com/matzehuels/depgraph/pkg/io"
	"github.com/matzehuels/depgraph/pkg/render/nodelink"
)

// Runner exports graphs with caching.
//
// The Runner keeps no per-export state, so one Runner may serve concurrent
// exports with different options.
type Runner struct {
	Cache  cache.Cache
	TTL    time.Duration
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil logger
// uses log.Default().
func NewRunner(c cache.Cache, ttl time.Duration, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, TTL: ttl, Logger: logger}
}

// Export encodes or renders snap in the requested format.
// A nil snapshot exports the empty graph.
func (r *Runner) Export(ctx context.Context, snap *graph.Snapshot, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	tasks := snap.Tasks()
	result := &Result{
		Format: opts.Format,
		Stats: Stats{
			TaskCount: snap.Len(),
			EdgeCount: len(snap.Edges()),
		},
	}

	var err error
	if opts.IsDocument() {
		result.Data, err = encodeDocument(ctx, tasks, opts.Format)
	} else {
		result.Data, result.Cached, err = r.renderImage(ctx, tasks, opts)
	}
	if err != nil {
		return nil, err
	}
	result.Stats.Duration = time.Since(start)

	opts.Logger.Debug("exported graph",
		"format", result.Format,
		"tasks", result.Stats.TaskCount,
		"bytes", len(result.Data),
		"cached", result.Cached,
		"duration", result.Stats.Duration)
	return result, nil
}

func encodeDocument(ctx context.Context, tasks []graph.Task, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := depio.Encode(ctx, &buf, tasks, depio.Format(format)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderImage produces DOT source and, for png and svg, renders it through
// the cache.
func (r *Runner) renderImage(ctx context.Context, tasks []graph.Task, opts Options) ([]byte, bool, error) {
	dot := nodelink.ToDOT(tasks, opts.nodelinkOptions())
	if !opts.Cacheable() {
		return []byte(dot), false, nil
	}

	key := cache.ArtifactKey(cache.Hash([]byte(dot)), opts.Format)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache lookup failed", "key", key, "error", err)
		} else if hit {
			return data, true, nil
		}
	}

	data, err := nodelink.Render(ctx, dot, nodelink.Format(opts.Format))
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		opts.Logger.Warn("cache store failed", "key", key, "error", err)
	}
	return data, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
