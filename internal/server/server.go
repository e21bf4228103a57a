// Package server exposes the aggregated snapshot over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ppiankov/indicacoes/internal/metrics"
	"github.com/ppiankov/indicacoes/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// IndicationsPath serves the snapshot
const IndicationsPath = "/api/indications"

const fallbackMessage = "Ocorreu um erro inesperado no servidor."

// Aggregator produces a fresh snapshot on every call
type Aggregator interface {
	Collect(ctx context.Context) ([]model.LegislativeMatter, error)
}

// Server is the delivery boundary: one ingestion per request, no stored snapshot
type Server struct {
	aggregator   Aggregator
	aggTimeout   time.Duration
	cacheControl atomic.Value // string
	inflight     singleflight.Group
	logger       *zap.Logger
	metrics      *metrics.Metrics
	server       *http.Server
}

// New creates a server. logger and m may be nil.
func New(cfg model.ServerConfig, aggregator Aggregator, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		aggregator: aggregator,
		aggTimeout: cfg.AggregationTimeout,
		logger:     logger,
		metrics:    m,
	}
	s.SetCacheDirectives(cfg.CacheMaxAge, cfg.StaleWhileRevalidate)

	s.server = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// SetCacheDirectives updates the Cache-Control header sent with snapshots. Safe for concurrent use.
func (s *Server) SetCacheDirectives(maxAge, staleWhileRevalidate time.Duration) {
	s.cacheControl.Store(CacheControl(maxAge, staleWhileRevalidate))
}

// CacheControl renders the shared-cache directives for a snapshot response
func CacheControl(maxAge, staleWhileRevalidate time.Duration) string {
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d",
		int64(maxAge/time.Second), int64(staleWhileRevalidate/time.Second))
}

// Handler returns the routed, instrumented handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(IndicationsPath, s.handleIndications)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s.withRequestID(s.withLogging(mux))
}

func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

// Addr is the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

type errorBody struct {
	Message string `json:"message"`
}

func (s *Server) handleIndications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "método não permitido"})
		return
	}

	matters, err := s.collect(r.Context())
	if err != nil {
		s.logger.Error("serving indications failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = fallbackMessage
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: msg})
		return
	}

	w.Header().Set("Cache-Control", s.cacheControl.Load().(string))
	writeJSON(w, http.StatusOK, matters)
}

// collect shares one in-flight aggregation between concurrent requests.
// The run is detached from any single caller so one disconnect does not fail the others.
func (s *Server) collect(ctx context.Context) ([]model.LegislativeMatter, error) {
	ch := s.inflight.DoChan("collect", func() (any, error) {
		runCtx := context.Background()
		if s.aggTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.aggTimeout)
			defer cancel()
		}
		return s.aggregator.Collect(runCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		matters, ok := res.Val.([]model.LegislativeMatter)
		if !ok {
			return nil, errors.New(fallbackMessage)
		}
		if matters == nil {
			matters = []model.LegislativeMatter{}
		}
		return matters, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
