package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/schema"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	var err error
	if p, ok := s.meta.(pinger); ok {
		err = p.Ping(ctx)
	} else {
		_, err = s.meta.Catalog(ctx)
	}
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrKindConnectionFailed, "metadata unavailable", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	names, err := schema.ListTables(ctx, s.meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tables": names})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readTable(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDDL(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readTable(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, schema.WriteTable(t))
}

func (s *Server) handleQuerySchema(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readTable(w, r)
	if !ok {
		return
	}
	qs, err := schema.ReadQuerySchema(t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

// readTable reads the {table} URL parameter's table, writing the error
// response itself when it cannot.
func (s *Server) readTable(w http.ResponseWriter, r *http.Request) (*schema.Table, bool) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	name := chi.URLParam(r, "table")
	t, err := s.tables.Read(ctx, s.meta, name)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if t == nil {
		s.writeError(w, r, errs.Newf(errs.ErrKindNotFound, "table %q not found", name))
		return nil, false
	}
	return t, true
}

func (s *Server) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.QueryTimeout)
	}
	return context.WithCancel(r.Context())
}

// --- responses ---

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{
			"path":   r.URL.Path,
			"status": status,
		})
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

// statusOf maps an error kind to an HTTP status. A bare context error
// counts as a timeout.
func statusOf(err error) int {
	if errs.KindOf(err) == errs.ErrKindUnknown &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		return http.StatusGatewayTimeout
	}
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindInvalidData, errs.ErrKindUnsupported:
		return http.StatusUnprocessableEntity
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
