package economy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"gorm.io/gorm"
)

// SnapshotStore reads back persisted snapshots
type SnapshotStore interface {
	Latest(ctx context.Context, network string) (*Snapshot, error)
}

type ServerConfig struct {
	Addr    string
	Metrics *Metrics
	Latest  *Latest
	// Store answers /snapshot/latest until the first in-memory capture
	Store   SnapshotStore
	Network string
	Logger  iface.Logger
}

// Server exposes metrics and the latest snapshot over HTTP
type Server struct {
	addr    string
	metrics *Metrics
	latest  *Latest
	store   SnapshotStore
	network string
	log     iface.Logger
}

func NewServer(cfg ServerConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	latest := cfg.Latest
	if latest == nil {
		latest = &Latest{}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		addr:    cfg.Addr,
		metrics: metrics,
		latest:  latest,
		store:   cfg.Store,
		network: cfg.Network,
		log:     log,
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/snapshot/latest", s.handleLatest)
	return r
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap, ok := s.latest.Get()
	if !ok && s.store != nil {
		stored, err := s.store.Latest(r.Context(), s.network)
		switch {
		case err == nil:
			snap, ok = stored, true
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.log.Warn("Reading stored snapshot: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "snapshot store unavailable"})
			return
		}
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no snapshot captured yet"})
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Serving metrics and snapshots on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
