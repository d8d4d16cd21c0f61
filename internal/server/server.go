// Package server exposes reading sessions over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/f3rmion/suiwen/internal/config"
	"github.com/f3rmion/suiwen/internal/dict"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server is the HTTP API together with its session store.
type Server struct {
	cfg   config.ServerConfig
	store *Store
	http  *http.Server
	log   *zap.Logger
}

// New builds a server for d. text is the starting text of new sessions.
func New(d *dict.Dictionary, cfg config.ServerConfig, text string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	store := NewStore(d, cfg.SessionTTL, text, log)
	h := NewHandler(d, store, cfg.MaxUploadBytes, log)

	return &Server{
		cfg:   cfg,
		store: store,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(h, cfg.AllowOrigins, log),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Store returns the session store.
func (s *Server) Store() *Store {
	return s.store
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		return s.store.Run(ctx, evictInterval(s.cfg.SessionTTL))
	})

	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// evictInterval checks a few times per TTL, at most once a minute.
func evictInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	return interval
}
