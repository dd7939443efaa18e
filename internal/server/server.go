// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the "composition root": every dependency in the app is wired
// together here (and nowhere else):
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs — services get repository
// interfaces, handlers get services, nothing skips a layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/handler"
	"github.com/sakif/snipvault/internal/middleware"
	sqliteRepo "github.com/sakif/snipvault/internal/repository/sqlite"
	"github.com/sakif/snipvault/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port               int
	DBPath             string // path to the SQLite database file
	JWTSecret          string // HMAC secret for session tokens
	GitHubClientID     string // optional: enables GitHub OAuth login
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The DB is closed
// during graceful shutdown so the WAL is flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server, opening the database and wiring all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("server: JWT secret is required")
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, handlers, and URL patterns.
//
// ROUTE STRUCTURE:
//
//	POST /auth/register              → create account (email/password)
//	POST /auth/login                 → password login
//	GET  /auth/github/login          → start GitHub OAuth     [if configured]
//	GET  /auth/github/callback       → finish GitHub OAuth    [if configured]
//	POST /auth/logout                → clear session
//
//	(everything under /api requires a valid session)
//	GET  /api/me                     → current user
//	GET  /api/collections            → list my collections
//	POST /api/collections            → create collection
//	PUT  /api/collections/{id}       → update collection
//	GET  /api/snippets               → list my snippets (filters in query)
//	POST /api/snippets               → create snippet
//	GET  /api/snippets/{id}          → get snippet
//	PUT  /api/snippets/{id}          → update snippet
//	POST /api/snippets/{id}/archive  → archive snippet (one-way)
func (s *Server) setupRoutes() error {
	// Global middleware, in order: request ID for tracing, real client IP
	// behind proxies, panic recovery, then our structured request log.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// OAuth is optional — without credentials the routes simply don't exist.
	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	// One sqlite.DB implements all three repository interfaces.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	collectionService := service.NewCollectionService(s.db, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	collectionHandler := handler.NewCollectionHandler(collectionService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		// The auth middleware rejects unauthenticated requests with 401
		// before any handler — and therefore any query — runs.
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/collections", collectionHandler.HandleList)
		r.Post("/collections", collectionHandler.HandleCreate)
		r.Put("/collections/{id}", collectionHandler.HandleUpdate)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Post("/snippets", snippetHandler.HandleCreate)
		r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
		r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
		r.Post("/snippets/{id}/archive", snippetHandler.HandleArchive)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
