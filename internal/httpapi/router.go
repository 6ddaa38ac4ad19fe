package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depgraph/pkg/errors"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.health)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.addTask)
		r.Delete("/", s.resetTasks)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getTask)
			r.Put("/dependencies/{dep}", s.addDependency)
			r.Delete("/dependencies/{dep}", s.removeDependency)
		})
	})

	r.Get("/edges", s.listEdges)
	r.Get("/export/{format}", s.export)
	r.Post("/import/{format}", s.importDocument)

	return r
}
