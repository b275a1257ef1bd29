// Package server exposes the schema catalog over HTTP for the configuration
// editor: listing, search, path rendering, node description, rebuilds with
// deployment enumerations, and document validation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"github.com/reoring/dashschema/catalog"
	"github.com/reoring/dashschema/internal/logger"
)

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Catalog serves the read endpoints.
	Catalog *catalog.Catalog
	// Build backs POST /v1/schemas/build; catalog.Build when nil.
	Build func(catalog.Options) (*catalog.Catalog, error)
	// MaxDepth is passed to Build.
	MaxDepth int
	Logger   logger.Logger
}

// NewHandler returns the routed and wrapped handler for cfg.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("server: catalog is required")
	}
	if cfg.Build == nil {
		cfg.Build = catalog.Build
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewLogger(logger.TestConfig())
	}
	h := &schemaHandler{
		catalog:  cfg.Catalog,
		build:    cfg.Build,
		maxDepth: cfg.MaxDepth,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(withLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1/schemas", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/build", h.Build)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Get("/search", h.Search)
			r.Get("/render", h.Render)
			r.Get("/describe", h.Describe)
			r.Post("/validate", h.Validate)
		})
	})

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
	})
	return c.Handler(r), nil
}

// withLogger stores the request scoped logger in the context and logs each
// request once it completes.
func withLogger(base logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.ContextWithLogger(r.Context(), log)))
			log.Debug("Request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

// Run starts the HTTP server and shuts it down when ctx is done.
func Run(ctx context.Context, cfg Config) error {
	handler, err := NewHandler(cfg)
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.Logger != nil {
			cfg.Logger.Info("Server starting", "addr", addr, "schemas", len(cfg.Catalog.Names()))
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
