package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"datadeck/app"
	"datadeck/internal"
)

// App is the HTTP boundary layer. It only translates requests to the core
// services and their results back to JSON; all processing semantics live in
// the app package.
type App struct {
	router   *chi.Mux
	pipeline *app.PipelineService
	queries  *app.QueryService
	log      *internal.Logger

	// maxUploadBytes bounds the multipart upload size
	maxUploadBytes int64
}

// Config holds HTTP application configuration
type Config struct {
	MaxUploadBytes int64
}

// NewApp creates the HTTP application around the core services
func NewApp(config Config, pipeline *app.PipelineService, queries *app.QueryService) *App {
	maxUpload := config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20 // 32 MiB
	}

	a := &App{
		router:         chi.NewRouter(),
		pipeline:       pipeline,
		queries:        queries,
		log:            internal.DefaultLogger,
		maxUploadBytes: maxUpload,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/api/files/upload", a.handleUpload)
	a.router.Get("/api/analytics/dashboard", a.handleDashboard)
	a.router.Get("/api/data", a.handleTable)
	a.router.Get("/api/health", a.handleHealth)
}

// Router exposes the configured handler for the HTTP server
func (a *App) Router() http.Handler {
	return a.router
}
