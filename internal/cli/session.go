package cli

import (
	"context"

	"github.com/matzehuels/depgraph/pkg/config"
	"github.com/matzehuels/depgraph/pkg/graph"
	"github.com/matzehuels/depgraph/pkg/workspace"
)

// session is a workspace graph loaded for one command.
type session struct {
	cfg   *config.Config
	ws    workspace.Store
	name  string
	store *graph.Store

	// loaded is the store version right after restore.
	loaded uint64
}

// openSession loads the configured workspace.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := workspace.Restore(ctx, ws, cfg.Workspace.Name)
	if err != nil {
		ws.Close()
		return nil, err
	}
	c.Logger.Debug("opened workspace", "name", cfg.Workspace.Name, "tasks", store.Len())
	return &session{
		cfg:    cfg,
		ws:     ws,
		name:   cfg.Workspace.Name,
		store:  store,
		loaded: store.Version(),
	}, nil
}

// dirty reports whether the graph changed since it was loaded.
func (s *session) dirty() bool {
	return s.store.Version() != s.loaded
}

// save persists the graph if it changed.
func (s *session) save(ctx context.Context) error {
	if !s.dirty() {
		return nil
	}
	if err := s.ws.Save(ctx, s.name, s.store.Snapshot()); err != nil {
		return err
	}
	s.loaded = s.store.Version()
	return nil
}

func (s *session) Close() error {
	return s.ws.Close()
}

// withSession runs fn on the workspace graph and saves it afterwards.
// The graph is not saved when fn fails.
func (c *CLI) withSession(ctx context.Context, fn func(*session) error) error {
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	return s.save(ctx)
}
