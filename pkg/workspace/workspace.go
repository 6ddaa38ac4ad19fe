// Package workspace persists the task graph between runs.
//
// A workspace is a named graph stored as the same JSON document that
// `depgraph export` writes. Two backends are available:
//
//   - [FileStore]: one file per workspace under a directory, for local use
//   - [RedisStore]: one key per workspace, so several machines or a server
//     can share graphs
//
// # Usage
//
//	ws, err := workspace.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer ws.Close()
//
//	store, err := workspace.Restore(ctx, ws, "default")
//	// ... mutate store
//	err = ws.Save(ctx, "default", store.Snapshot())
package workspace

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/depgraph/pkg/config"
	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
)

// Store is the interface for workspace storage backends.
type Store interface {
	// Load returns the saved graph, or nil, nil if name was never saved.
	Load(ctx context.Context, name string) (*graph.Snapshot, error)

	// Save replaces the saved graph for name.
	Save(ctx context.Context, name string, snap *graph.Snapshot) error

	// Delete removes name. Deleting a missing workspace is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the saved workspace names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases connections held by the backend.
	Close() error
}

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Workspace.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.Workspace.Dir)
	case config.BackendRedis:
		return DialRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown workspace backend %q", cfg.Workspace.Backend)
	}
}

// Restore loads name into a new graph store. A workspace that was never saved
// yields an empty store.
func Restore(ctx context.Context, s Store, name string, opts ...graph.Option) (*graph.Store, error) {
	snap, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	store := graph.NewStore(opts...)
	if snap != nil {
		store.Replace(snap)
	}
	return store, nil
}
