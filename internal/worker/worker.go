package worker

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by Take when no worker is registered under the id.
	ErrNotFound = errors.New("worker not found")
	// ErrDuplicateID is returned by Register when the id is already taken.
	ErrDuplicateID = errors.New("worker id already registered")
	// ErrRebind is returned by Bind when the worker is already bound or closed.
	ErrRebind = errors.New("worker already bound")
)

// State tracks a worker through its lifetime: registered, claimed by a
// session, finished.
type State int

const (
	Pending State = iota
	Bound
	Closed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Bound:
		return "bound"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Handler is the session-side hook a worker closes on teardown.
type Handler interface {
	Close() error
}

// Worker represents one pending or active monitoring session. It is created
// by the registration endpoint, claimed by exactly one socket connection,
// and closed by that connection's session (or by the registry's claim TTL if
// it is never claimed).
type Worker struct {
	ID string

	mu      sync.Mutex
	state   State
	handler Handler
}

func New(id string) *Worker {
	return &Worker{ID: id}
}

// Bind associates the worker with its session's handler. A worker binds at
// most once; a second bind, or a bind after Close, fails with ErrRebind.
func (w *Worker) Bind(h Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Pending {
		return ErrRebind
	}
	w.state = Bound
	w.handler = h
	return nil
}

// Close moves the worker to Closed and closes its handler, if any. Safe to
// call from both the session teardown and the registry recycler; repeated
// calls are no-ops.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.state == Closed {
		w.mu.Unlock()
		return
	}
	w.state = Closed
	h := w.handler
	w.handler = nil
	w.mu.Unlock()

	if h != nil {
		h.Close()
	}
}

func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
