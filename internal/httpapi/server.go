// Package httpapi serves a workspace graph over HTTP.
//
// Every handler works on one shared [graph.Store]. Successful mutations are
// saved to the workspace before the response is written, so a client that
// sees a 2xx status can rely on the change having been persisted.
//
// # Routes
//
//	GET    /healthz                          build information
//	GET    /tasks?q=QUERY                    list tasks, optionally filtered
//	POST   /tasks                            add a task
//	DELETE /tasks                            remove every task
//	GET    /tasks/{id}                       one task
//	PUT    /tasks/{id}/dependencies/{dep}    {id} depends on {dep}
//	DELETE /tasks/{id}/dependencies/{dep}    remove that dependency
//	GET    /edges                            every dependency edge
//	GET    /export/{format}                  json, csv, png, svg or dot
//	POST   /import/{format}                  replace the graph with a document
//
// Errors are returned as {"code": "...", "message": "..."} with a status
// derived from the error code.
package httpapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depgraph/pkg/graph"
	"github.com/matzehuels/depgraph/pkg/pipeline"
	"github.com/matzehuels/depgraph/pkg/workspace"
)

// Default server timeouts.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// maxBodyBytes bounds request bodies, including imported documents.
const maxBodyBytes = 10 << 20

// Options configures a [Server].
type Options struct {
	// Store is the graph served. Required.
	Store *graph.Store

	// Workspace and Name select where mutations are saved. A nil Workspace
	// keeps the graph in memory only.
	Workspace workspace.Store
	Name      string

	// Runner exports the graph. Defaults to an uncached runner.
	Runner *pipeline.Runner

	// RankDir is the default Graphviz rank direction for image exports.
	RankDir string

	Logger *log.Logger
}

// Server is the HTTP API over one workspace graph.
type Server struct {
	store   *graph.Store
	ws      workspace.Store
	name    string
	runner  *pipeline.Runner
	rankDir string
	logger  *log.Logger

	// saveMu orders workspace saves so that the last save holds the newest graph.
	saveMu sync.Mutex
	saved  uint64

	handler    http.Handler
	httpServer *http.Server
}

// New creates a server. It panics if opts.Store is nil.
func New(opts Options) *Server {
	if opts.Store == nil {
		panic("httpapi: nil store")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, 0, opts.Logger)
	}
	s := &Server{
		store:   opts.Store,
		ws:      opts.Workspace,
		name:    opts.Name,
		runner:  opts.Runner,
		rankDir: opts.RankDir,
		logger:  opts.Logger,
		saved:   opts.Store.Version(),
	}
	s.handler = s.routes()
	return s
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", ln.Addr().String(), "workspace", s.name)
		errc <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// persist saves the graph to the workspace if it changed since the last save.
func (s *Server) persist(ctx context.Context) error {
	if s.ws == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	version := s.store.Version()
	if version == s.saved {
		return nil
	}
	if err := s.ws.Save(ctx, s.name, s.store.Snapshot()); err != nil {
		return fmt.Errorf("save workspace %q: %w", s.name, err)
	}
	s.saved = version
	return nil
}
