// Package server assembles the HTTP API: router, middleware, route table,
// and the server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/powershield/shield/internal/handler"
	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/server/middleware"
	"github.com/powershield/shield/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MaxBodySize     int64 // bytes
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            5000,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		MaxBodySize:     5 * 1024 * 1024, // 5MB
	}
}

// Store bundles the per-collection store slices the handlers consume. The
// production *store.Store satisfies it; tests substitute fakes per handler.
type Store interface {
	handler.AdminStore
	handler.GalleryStore
	handler.ContactStore
	handler.JobStore
	handler.ApplicationStore
	handler.UserStore
	Ping(ctx context.Context) error
}

// Auth is the authentication surface the server needs: the gate for the
// middleware and the login flow for the admin handler.
type Auth interface {
	middleware.Authenticator
	handler.LoginService
}

// Server is the top-level HTTP server. It owns the Chi router and wires
// the handlers to the store and auth service.
type Server struct {
	cfg        Config
	router     chi.Router
	store      Store
	auth       Auth
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st Store, auth Auth, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		auth:   auth,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	if s.cfg.MaxBodySize > 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				req.Body = http.MaxBytesReader(w, req.Body, s.cfg.MaxBodySize)
				next.ServeHTTP(w, req)
			})
		})
	}

	adminHandler := handler.NewAdminHandler(s.store, s.auth, s.logger)
	galleryHandler := handler.NewGalleryHandler(s.store, s.logger)
	contactHandler := handler.NewContactHandler(s.store, s.logger)
	jobHandler := handler.NewJobHandler(s.store, s.logger)
	appHandler := handler.NewApplicationHandler(s.store, s.logger)
	userHandler := handler.NewUserHandler(s.store, s.logger)

	authenticate := middleware.Authenticate(s.auth)
	requireAdmin := middleware.RequireRole(model.RoleAdmin)
	requireSuper := middleware.RequireRole(model.RoleSuperAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/me", adminHandler.Me)
				r.Get("/", adminHandler.List)
				r.Get("/{id}", adminHandler.Get)
				r.Put("/{id}", adminHandler.Update)

				// Creating, deactivating, and deleting accounts is
				// reserved for super admins.
				r.Group(func(r chi.Router) {
					r.Use(requireSuper)
					r.Post("/", adminHandler.Create)
					r.Patch("/{id}/status", adminHandler.UpdateStatus)
					r.Delete("/{id}", adminHandler.Delete)
				})
			})
		})

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", galleryHandler.List)
			r.Get("/featured", galleryHandler.Featured)
			r.Get("/categories", galleryHandler.Categories)
			r.Get("/{id}", galleryHandler.Get)
			r.Post("/{id}/like", galleryHandler.Like)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/admin/all", galleryHandler.ListAll)
				r.Get("/admin/stats", galleryHandler.Stats)
				r.Post("/", galleryHandler.Create)
				r.Put("/{id}", galleryHandler.Update)
				r.Delete("/{id}", galleryHandler.Delete)
			})
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", contactHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/", contactHandler.List)
				r.Get("/stats", contactHandler.Stats)
				r.Get("/unread-count", contactHandler.UnreadCount)
				r.Get("/{id}", contactHandler.Get)
				r.Patch("/{id}/status", contactHandler.UpdateStatus)
				r.Delete("/{id}", contactHandler.Delete)
			})
		})

		r.Route("/careers", func(r chi.Router) {
			r.Get("/", jobHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/admin/all", jobHandler.ListAll)
				r.Post("/", jobHandler.Create)
				r.Put("/{id}", jobHandler.Update)
				r.Patch("/{id}/status", jobHandler.UpdateStatus)
				r.Delete("/{id}", jobHandler.Delete)
			})

			r.Get("/{id}", jobHandler.Get)
		})

		r.Route("/job-applications", func(r chi.Router) {
			r.Post("/", appHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/", appHandler.List)
				r.Get("/stats", appHandler.Stats)
				r.Get("/grouped", appHandler.Grouped)
				r.Get("/{id}", appHandler.Get)
				r.Put("/{id}", appHandler.Update)
				r.Patch("/{id}/status", appHandler.UpdateStatus)
				r.Delete("/{id}", appHandler.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/check-email", userHandler.CheckEmail)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, requireAdmin)
				r.Get("/", userHandler.List)
				r.Get("/stats", userHandler.Stats)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	s.router = r
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	w.Write([]byte(`{"status":"` + status + `"}`))
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

var _ Store = (*store.Store)(nil)
