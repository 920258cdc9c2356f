// Package server is the composition root: it opens the store and the optional
// cache, builds services and handlers, registers routes and runs the HTTP
// server until a shutdown signal arrives.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  -> repository.Store (sqlite by default, postgres when DATABASE_URL is set)
//	  -> cache.Cache      (only when REDIS_URL is set)
//	  -> services (likes, lists, auth) -> handlers -> chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/manga-match/internal/auth"
	"github.com/sakif/manga-match/internal/cache"
	"github.com/sakif/manga-match/internal/catalog"
	"github.com/sakif/manga-match/internal/config"
	"github.com/sakif/manga-match/internal/handler"
	"github.com/sakif/manga-match/internal/middleware"
	"github.com/sakif/manga-match/internal/repository"
	"github.com/sakif/manga-match/internal/repository/postgres"
	sqliteRepo "github.com/sakif/manga-match/internal/repository/sqlite"
	"github.com/sakif/manga-match/internal/service"
)

// Server owns the store and cache connections and closes them on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
	cache  *cache.Cache // nil without REDIS_URL
}

// New opens the configured backends and wires every route.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var comicCache *cache.Cache
	if cfg.RedisURL != "" {
		comicCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	s, err := newServer(cfg, logger, store, comicCache)
	if err != nil {
		store.Close()
		if comicCache != nil {
			comicCache.Close()
		}
		return nil, err
	}
	return s, nil
}

// newServer wires routes around already-open backends. Tests pass an
// in-memory store here.
func newServer(cfg *config.Config, logger *slog.Logger, store repository.Store, comicCache *cache.Cache) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		cache:  comicCache,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.UsePostgres() {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return db, nil
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return db, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz, /readyz
//	GET    /auth/google, /auth/google/callback
//	GET    /auth/me                        (session)
//	POST   /auth/logout
//	GET    /api/comics, /api/comics/batch  (public, session optional)
//	*      /api/likes, /api/lists/...      (session)
//	GET    /api/users/{userID}/likes|lists (session, owner only)
//
// Middleware runs in the order added: request id, real ip, logging, panic
// recovery, then CORS so preflights are answered before auth.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.GetCORSAllowedOrigins()))

	// === Health ===
	var cacheCheck handler.HealthChecker
	if s.cache != nil {
		cacheCheck = s.cache
	}
	health := handler.NewHealthHandler(s.store, cacheCheck, s.logger)
	s.router.Get("/healthz", health.Healthz)
	s.router.Get("/readyz", health.Readyz)

	// === Auth ===
	var google handler.OAuthProvider
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	} else {
		s.logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set, Google login is disabled")
	}

	authService := service.NewAuthService(s.store, tokens, s.logger)
	authHandler := handler.NewAuthHandler(google, authService, handler.AuthConfig{
		ClientBaseURL: s.config.ClientBaseURL,
		SessionTTL:    tokens.TTL(),
		SecureCookies: s.config.IsProduction(),
	}, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/google", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API ===
	catalogOpts := []catalog.Option{catalog.WithLogger(s.logger)}
	if s.cache != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(s.cache))
	}
	catalogHandler := handler.NewCatalogHandler(catalog.New(s.config.AniListURL, catalogOpts...), s.logger)

	likes := handler.NewLikeHandler(service.NewLikeService(s.store, s.store, s.logger), s.logger)
	lists := handler.NewListHandler(service.NewListService(s.store, s.store, s.logger), s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/comics", catalogHandler.HandleDiscover)
			r.Get("/comics/batch", catalogHandler.HandleBatch)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/likes", likes.HandleList)
			r.Post("/likes", likes.HandleAdd)
			r.Delete("/likes", likes.HandleRemove)

			r.Get("/lists", lists.HandleList)
			r.Post("/lists", lists.HandleCreate)
			r.Put("/lists/{name}/rename", lists.HandleRename)
			r.Delete("/lists/{name}", lists.HandleDelete)
			r.Post("/lists/{name}/add", lists.HandleAddItem)
			r.Post("/lists/{name}/remove", lists.HandleRemoveItem)

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Use(auth.RequireOwner("userID"))
				r.Get("/likes", likes.HandleListForUser)
				r.Get("/lists", lists.HandleListForUser)
			})
		})
	})

	return nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up to
// ShutdownTimeout and closes the cache and the store.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.AppEnv),
			slog.Bool("postgres", s.config.UsePostgres()),
			slog.Bool("redis", s.cache != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("closing redis", slog.String("error", err.Error()))
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", slog.String("error", err.Error()))
	}
}
