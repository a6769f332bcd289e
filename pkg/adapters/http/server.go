package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/internal/presentation/graph"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the snapshots of running trees over HTTP:
//
//	GET /health                  liveness
//	GET /info                    version
//	GET /trees                   IDs with a stored snapshot
//	GET /trees/{id}              latest snapshot (JSON)
//	GET /trees/{id}/graph        Mermaid chart with the active path highlighted
//	GET /trees/{id}/events       snapshot stream (SSE)
//	GET /metrics                 Prometheus exposition, when a gatherer is set
//
// Server is itself a ports.SnapshotPublisher: hand it to
// stackbt.WithSnapshotPublisher and every tick is stored and broadcast.
type Server struct {
	store    ports.SnapshotStore
	roots    map[string]domain.Node
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	streams  *StreamManager
	mu       sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves g under /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server reading from store.
func NewServer(store ports.SnapshotStore, opts ...Option) *Server {
	s := &Server{
		store:  store,
		roots:  make(map[string]domain.Node),
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Attach registers the node graph of treeID so /graph can render it.
func (s *Server) Attach(treeID string, root domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[treeID] = root
}

// Publish implements ports.SnapshotPublisher.
func (s *Server) Publish(ctx context.Context, snap domain.Snapshot) error {
	if err := s.store.Publish(ctx, snap); err != nil {
		return err
	}
	if data, err := json.Marshal(snap); err == nil {
		s.streams.Broadcast(snap.TreeID, string(data))
	}
	return nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/trees", func(r chi.Router) {
		r.Get("/", s.ListTrees)
		r.Get("/{id}", s.GetSnapshot)
		r.Get("/{id}/graph", s.GetGraph)
		r.Get("/{id}/events", s.SubscribeEvents)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{
		"app":     "stackbt-http",
		"version": strings.TrimSpace(stackbt.Version),
	})
}

// ListTrees handles GET /trees.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.logger.Error("List failed", "error", err)
		return
	}
	sort.Strings(ids)
	writeJSON(w, s.logger, ids)
}

// GetSnapshot handles GET /trees/{id}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.logger, snap)
}

// GetGraph handles GET /trees/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	root, ok := s.roots[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("no graph attached for tree %q", id), http.StatusNotFound)
		return
	}

	overlay := &graph.GraphOverlay{}
	snap, err := s.store.Load(r.Context(), id)
	switch {
	case err == nil:
		overlay.Path = snap.Path
	case !errors.Is(err, domain.ErrSnapshotNotFound):
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Load failed", "tree", id, "error", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(root, overlay))
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (domain.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Load(r.Context(), id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		http.Error(w, fmt.Sprintf("no snapshot for tree %q", id), http.StatusNotFound)
		return snap, false
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Load failed", "tree", id, "error", err)
		return snap, false
	}
	return snap, true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}

// StreamManager fans snapshot messages out to SSE subscribers, per tree.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager logging dropped messages to logger (nil discards).
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe returns a channel of messages for treeID and its cancel func.
func (sm *StreamManager) Subscribe(treeID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[treeID]; !ok {
		sm.subscribers[treeID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[treeID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[treeID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, treeID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of treeID. Slow subscribers miss messages.
func (sm *StreamManager) Broadcast(treeID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[treeID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "tree", treeID)
		}
	}
}

// SubscribeEvents handles GET /trees/{id}/events (SSE). The stored snapshot,
// if any, is sent first.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if snap, err := s.store.Load(r.Context(), id); err == nil {
		if data, err := json.Marshal(snap); err == nil {
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}
	flusher.Flush()
	s.logger.Info("SSE: Subscribed", "tree", id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "tree", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
