package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/pingmon/internal/domain"
	"github.com/hamed0406/pingmon/internal/engine"
)

// Core is the read-only surface the API needs from the engine. The core
// owns no wire protocol; this server is just one snapshot consumer.
type Core interface {
	Snapshot() []engine.HostSnapshot
	RTTSeries(id domain.HostID, points int) ([]*float64, bool)
	Subscribe(buffer int) (<-chan domain.Event, func())
}

type Server struct {
	Logger *zap.Logger
	Core   Core
}

func NewServer(l *zap.Logger, core Core) *Server {
	return &Server{Logger: l, Core: core}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/hosts", s.handleListHosts)
	r.Get("/api/hosts/{id}", s.handleGetHost)
	r.Get("/api/hosts/{id}/series", s.handleHostSeries)
	r.Get("/api/events", s.handleEvents)

	return r
}

func (s *Server) handleListHosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Core.Snapshot())
}

func (s *Server) handleGetHost(w http.ResponseWriter, r *http.Request) {
	id := domain.HostID(chi.URLParam(r, "id"))
	for _, snap := range s.Core.Snapshot() {
		if snap.ID == id {
			writeJSON(w, snap)
			return
		}
	}
	http.Error(w, "unknown host", http.StatusNotFound)
}

func (s *Server) handleHostSeries(w http.ResponseWriter, r *http.Request) {
	id := domain.HostID(chi.URLParam(r, "id"))

	points := 60
	if v := r.URL.Query().Get("points"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "bad points", http.StatusBadRequest)
			return
		}
		points = n
	}

	series, ok := s.Core.RTTSeries(id, points)
	if !ok {
		http.Error(w, "unknown host", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"id": id, "points": points, "rtt_ms": series})
}

// handleEvents streams live probe events as server-sent events until the
// client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, unsub := s.Core.Subscribe(256)
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				// Engine shut down.
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.Logger.Warn("event_encode_failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
