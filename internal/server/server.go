// Package server exposes the schema readers over HTTP.
//
//	GET /healthz                        metadata connection check
//	GET /metrics                        Prometheus metrics
//	GET /tables                         base table names of the current catalog
//	GET /tables/{table}                 normalized table description (JSON)
//	GET /tables/{table}/ddl             CREATE TABLE statement (text/plain)
//	GET /tables/{table}/query-schema    statement-building projection (JSON)
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/schema"
)

// Server serves table descriptions read through a metadata handle.
// It is safe for concurrent use; every request reads afresh.
type Server struct {
	cfg     *Config
	meta    database.Metadata
	tables  *schema.TableReader
	log     *logger.Logger
	metrics *metrics
	router  chi.Router
}

// New builds the router. tables may be nil for a default reader; log may be
// nil to discard request logs.
func New(cfg *Config, meta database.Metadata, tables *schema.TableReader, log *logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if tables == nil {
		tables = schema.NewTableReader()
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		cfg:     cfg,
		meta:    meta,
		tables:  tables,
		log:     log,
		metrics: newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", s.handleListTables)
		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", s.handleTable)
			r.Get("/ddl", s.handleDDL)
			r.Get("/query-schema", s.handleQuerySchema)
		})
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on cfg.Addr until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, "listen on "+s.cfg.Addr, err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.With().Err(err).Logger().Error("shutdown did not drain in-flight requests")
		return errs.Wrap(errs.ErrKindTimeout, "shutdown", err)
	}
	return nil
}
