package ws

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sysmon/backend/internal/worker"
)

// connectedAck is the first frame on every successful handoff.
const connectedAck = "connected to monitor, transmitting data..."

// Session binds one socket to its claimed worker and drives a push loop over
// it. The session is the sole owner of the connection and the sole closer of
// the worker: whichever side dies first, teardown runs exactly once and
// leaves no bound worker behind.
type Session struct {
	conn *websocket.Conn
	wk   *worker.Worker
	loop Loop
	log  *zap.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
}

func newSession(conn *websocket.Conn, wk *worker.Worker, loop Loop, log *zap.Logger) *Session {
	return &Session{
		conn: conn,
		wk:   wk,
		loop: loop,
		log:  log.With(zap.String("worker", wk.ID)),
	}
}

// start sends the ack frame and launches the push and read loops on their
// own goroutines, after the upgrade handshake has completed.
func (s *Session) start(ctx context.Context) {
	if err := s.WriteText([]byte(connectedAck)); err != nil {
		s.Close()
		return
	}
	go s.runLoop(ctx)
	go s.readLoop()
}

func (s *Session) runLoop(ctx context.Context) {
	if err := s.loop.Run(ctx, s); err != nil {
		s.log.Warn("push loop ended on collector error", zap.Error(err))
	}
	s.Close()
}

// readLoop echoes every inbound text frame. The channel is push-only; the
// echo proves liveness without imposing a command protocol. A read error is
// how a peer disconnect surfaces, so it triggers teardown.
func (s *Session) readLoop() {
	defer s.Close()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.WriteText([]byte("message received " + string(msg))); err != nil {
			return
		}
	}
}

// WriteText writes one text frame. Writes are serialized under a mutex
// because the push loop and the echo reply share the connection, and gorilla
// permits one concurrent writer. After Close, writes fail, which is how the
// push loop observes shutdown at its next write.
func (s *Session) WriteText(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the session down: socket first, then the worker. The worker's
// own Close calls back into here, so the flag is flipped before any closing
// starts; the re-entrant call sees it and returns.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.conn.Close()
	s.wk.Close()
	s.log.Info("session closed")
	return nil
}
