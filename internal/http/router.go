package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"booknotes/internal/ask"
	"booknotes/internal/handlers"
	"booknotes/internal/indexer"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine          ask.Engine
	IndexerPipeline *indexer.Pipeline
	DB              *sql.DB
	VectorStore     handlers.CollectionChecker
	CollectionName  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)
	r.Use(OwnerMiddleware)

	askHandler := handlers.NewAskHandler(deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.VectorStore, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			if deps.IndexerPipeline != nil {
				indexHandler := handlers.NewIndexHandler(deps.IndexerPipeline)
				r.Method(http.MethodPost, "/notes/{noteID}/index", indexHandler)
			}
		})
	})

	return r
}
