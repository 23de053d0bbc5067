// Package ws implements the telemetry stream: worker registration, the
// socket upgrade with its token handoff, and the per-session push loops.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sysmon/backend/internal/worker"
)

type Server struct {
	ctx      context.Context
	registry *worker.Registry
	loop     Loop
	host     HostCollector
	network  NetworkCollector
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewServer wires the stream server. loop is the push variant every accepted
// connection runs; host and network also back the one-shot HTTP snapshot
// endpoints. ctx is the service lifetime, it outlives any single request.
func NewServer(ctx context.Context, registry *worker.Registry, loop Loop, host HostCollector, network NetworkCollector, log *zap.Logger) *Server {
	return &Server{
		ctx:      ctx,
		registry: registry,
		loop:     loop,
		host:     host,
		network:  network,
		upgrader: websocket.Upgrader{
			// Local-only service, any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/connect", s.handleConnect)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/system", s.handleSystem)
	mux.HandleFunc("/network", s.handleNetwork)
}

// handleConnect upgrades the socket and performs the token handoff. The
// token is required up front; an unknown token is told why it was rejected
// on a close frame, since the upgrade has already completed by then.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("id")
	if token == "" {
		http.Error(w, "missing worker id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	wk, err := s.registry.Take(token)
	if err != nil {
		s.log.Info("rejected connect for unknown worker", zap.String("id", token))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid worker id"))
		conn.Close()
		return
	}

	// Snapshots should hit the wire as they are written, not sit in
	// Nagle's buffer.
	if tcp, ok := conn.UnderlyingConn().(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}

	sess := newSession(conn, wk, s.loop, s.log)
	if err := wk.Bind(sess); err != nil {
		s.log.Warn("worker no longer bindable", zap.String("id", token), zap.Error(err))
		conn.Close()
		return
	}

	s.log.Info("client connected", zap.String("worker", token), zap.String("remote", r.RemoteAddr))
	sess.start(s.ctx)
}

type registerResponse struct {
	ID     *string `json:"id"`
	Status *string `json:"status"`
}

// handleRegister mints a token, parks a pending worker under it, and returns
// the token. The worker waits for one /connect claim until the registry's
// claim TTL recycles it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := uuid.NewString()
	resp := registerResponse{}
	if err := s.registry.Register(worker.New(id)); err != nil {
		msg := err.Error()
		resp.Status = &msg
	} else {
		resp.ID = &id
		s.log.Info("registered worker", zap.String("id", id))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleSystem serves a single host snapshot, the same payload the host push
// loop streams.
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	data, err := s.host.Snapshot()
	if err != nil {
		s.log.Error("host snapshot failed", zap.Error(err))
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleNetwork serves a single network snapshot. The sample window runs
// within the request, bounded by the client's patience via the request
// context.
func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	data, err := s.network.Snapshot(r.Context())
	if err != nil {
		s.log.Error("network snapshot failed", zap.Error(err))
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListenAndServe serves mux until ctx is cancelled, then shuts the listener
// down and returns nil. In-flight sessions die with their connections.
func ListenAndServe(ctx context.Context, host string, port int, mux *http.ServeMux, log *zap.Logger) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Info("listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
