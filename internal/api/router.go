package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter creates a chi router with all routes mounted. staticDir, when
// non-empty and present on disk, is served for the editor client with / as
// its index document.
func NewRouter(apiHandler *APIHandler, logger zerolog.Logger, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// The editor client may be served from a different origin during development.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public routes
	r.Post("/login", apiHandler.LoginHandler)
	r.Post("/new-user", apiHandler.NewUserHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The interpreter endpoint works before login; authenticated callers
	// still get their sliding-session refresh.
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.OptionalJWTAuthMiddleware)
		r.Post("/interp", apiHandler.RunHandler)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(apiHandler.JWTAuthMiddleware)

		r.Post("/new-file", apiHandler.NewFileHandler)
		r.Get("/fetch-files", apiHandler.FetchFilesHandler)
		r.Get("/operate-file/{id}", apiHandler.GetFileHandler)
		r.Put("/operate-file/{id}", apiHandler.UpdateFileHandler)
		r.Delete("/operate-file/{id}", apiHandler.DeleteFileHandler)

		r.Post("/new-target", apiHandler.NewTargetHandler)
		r.Get("/fetch-targets", apiHandler.FetchTargetsHandler)
		r.Get("/operate-target/{id}", apiHandler.GetTargetHandler)
		r.Post("/operate-target/{id}", apiHandler.SendMessageHandler)
		r.Delete("/operate-target/{id}", apiHandler.DeleteTargetHandler)
	})

	// Static editor client
	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			fs := http.FileServer(http.Dir(staticDir))
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				http.ServeFile(w, req, filepath.Join(staticDir, "index.html"))
			})
			r.Handle("/static/*", fs)
		}
	}

	return r
}
