package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Server is the telemetry HTTP+WebSocket server, adapted from the
// teacher's api.Server. It exposes a health check and the emission-event
// WebSocket feed; there is no session/config/examples surface here since
// there is no running guest to manage, only a code buffer to observe.
type Server struct {
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	addr        string
}

// NewServer creates a telemetry server listening on addr (e.g.
// "127.0.0.1:8787"). The returned *Broadcaster is also the Sink the
// emit/vfp layers should be wired to.
func NewServer(addr string) (*Server, *Broadcaster) {
	broadcaster := NewBroadcaster()
	s := &Server{
		broadcaster: broadcaster,
		mux:         http.NewServeMux(),
		addr:        addr,
	}
	s.registerRoutes()
	return s, broadcaster
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/v1/stream", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.broadcaster.ClientCount(),
	})
}

// Start runs the server, blocking until it stops or errors.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("telemetry server starting on http://%s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("telemetry server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
