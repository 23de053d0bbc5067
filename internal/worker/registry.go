package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry is the process-wide map from connect token to pending worker. The
// registration endpoint inserts; a connecting session removes with Take. A
// worker left unclaimed past the claim TTL is recycled: removed and closed.
type Registry struct {
	mu       sync.Mutex
	workers  map[string]*Worker
	claimTTL time.Duration
	log      *zap.Logger
}

// NewRegistry creates a registry. claimTTL bounds how long a registered
// worker may sit unclaimed before it is recycled; zero disables expiry.
func NewRegistry(claimTTL time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		workers:  make(map[string]*Worker),
		claimTTL: claimTTL,
		log:      log,
	}
}

// Register inserts a pending worker under its id and arms the claim timer.
// An id that is already present is rejected with ErrDuplicateID.
func (r *Registry) Register(w *Worker) error {
	r.mu.Lock()
	if _, ok := r.workers[w.ID]; ok {
		r.mu.Unlock()
		return ErrDuplicateID
	}
	r.workers[w.ID] = w
	r.mu.Unlock()

	if r.claimTTL > 0 {
		time.AfterFunc(r.claimTTL, func() { r.recycle(w) })
	}
	return nil
}

// Take atomically removes and returns the worker for id. Under concurrent
// calls with the same id exactly one caller gets the worker; the rest get
// ErrNotFound.
func (r *Registry) Take(id string) (*Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.workers, id)
	return w, nil
}

// Len reports how many workers are waiting to be claimed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// recycle drops an unclaimed worker once its claim window lapses. The timer
// holds the worker itself, not just its id: a worker that was taken (or taken
// and replaced by a fresh registration under the same id) no longer matches
// the map entry, so a successful handoff and any successor worker are never
// disturbed.
func (r *Registry) recycle(w *Worker) {
	r.mu.Lock()
	cur, ok := r.workers[w.ID]
	expired := ok && cur == w
	if expired {
		delete(r.workers, w.ID)
	}
	r.mu.Unlock()

	if !expired {
		return
	}
	w.Close()
	r.log.Info("recycled unclaimed worker", zap.String("id", w.ID))
}
