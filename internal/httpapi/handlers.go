package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/depgraph/pkg/buildinfo"
	"github.com/matzehuels/depgraph/pkg/errors"
	"github.com/matzehuels/depgraph/pkg/graph"
	depio "github.com/matzehuels/depgraph/pkg/io"
	"github.com/matzehuels/depgraph/pkg/pipeline"
)

// =============================================================================
// Wire Types
// =============================================================================

type taskResponse struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Dependencies []string `json:"dependencies"`
}

type taskListResponse struct {
	Tasks []taskResponse `json:"tasks"`
	Total int            `json:"total"`
}

type edgeResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type edgeListResponse struct {
	Edges []edgeResponse `json:"edges"`
}

type addTaskRequest struct {
	Text         string   `json:"text"`
	Dependencies []string `json:"dependencies"`
}

type importResponse struct {
	Tasks int `json:"tasks"`
	Edges int `json:"edges"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
	Tasks int `json:"tasks"`
}

func newTaskResponse(t graph.Task) taskResponse {
	deps := t.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return taskResponse{ID: t.ID, Text: t.Text, Dependencies: deps}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Info:   buildinfo.Get(),
		Tasks:  s.store.Len(),
	})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.store.Tasks()
	byID := make(map[string]graph.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	ids := s.store.FilterByText(r.URL.Query().Get("q"))
	resp := taskListResponse{Tasks: make([]taskResponse, 0, len(ids)), Total: len(tasks)}
	for _, id := range ids {
		resp.Tasks = append(resp.Tasks, newTaskResponse(byID[id]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := s.store.Task(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnknownTask, "unknown task %q", id))
		return
	}
	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeMalformedInput, err, "invalid request body"))
		return
	}

	t, err := s.store.AddTask(req.Text, req.Dependencies)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/tasks/"+t.ID)
	writeJSON(w, http.StatusCreated, newTaskResponse(t))
}

func (s *Server) resetTasks(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveAllTasks()
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addDependency(w http.ResponseWriter, r *http.Request) {
	s.editDependency(w, r, s.store.AddDependency)
}

func (s *Server) removeDependency(w http.ResponseWriter, r *http.Request) {
	s.editDependency(w, r, s.store.RemoveDependency)
}

func (s *Server) editDependency(w http.ResponseWriter, r *http.Request, edit func(from, to string) error) {
	from, to := chi.URLParam(r, "id"), chi.URLParam(r, "dep")
	if err := edit(from, to); err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.store.Task(from)
	writeJSON(w, http.StatusOK, newTaskResponse(t))
}

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	edges := s.store.Edges()
	resp := edgeListResponse{Edges: make([]edgeResponse, len(edges))}
	for i, e := range edges {
		resp.Edges[i] = edgeResponse{From: e.From, To: e.To}
	}
	writeJSON(w, http.StatusOK, resp)
}

// export serves the graph in the requested format. Query parameters:
// rankdir, highlight (text query) and refresh.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Format:  chi.URLParam(r, "format"),
		RankDir: q.Get("rankdir"),
		Logger:  s.logger,
	}
	if opts.RankDir == "" {
		opts.RankDir = s.rankDir
	}
	if h := q.Get("highlight"); h != "" {
		opts.Highlight = s.store.FilterByText(h)
	}
	if refresh, err := strconv.ParseBool(q.Get("refresh")); err == nil {
		opts.Refresh = refresh
	}

	result, err := s.runner.Export(r.Context(), s.store.Snapshot(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", result.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename()))
	h.Set("Content-Length", strconv.Itoa(len(result.Data)))
	if result.Cacheable() {
		h.Set("X-Cache", cacheStatus(result.Cached))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// importDocument replaces the graph with the request body. An invalid
// document leaves the graph unchanged.
func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	format, err := depio.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	snap, err := depio.Import(r.Context(), s.store, body, format)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Tasks: snap.Len(), Edges: len(snap.Edges())})
}
