package ws

import (
	"context"

	"github.com/sysmon/backend/internal/execpool"
)

// HostCollector produces one serialized host snapshot. It may block for the
// duration of its sample window.
type HostCollector interface {
	Snapshot() ([]byte, error)
}

// NetworkCollector produces one serialized network snapshot. It suspends on
// its sample window natively, so it runs without the execution pool.
type NetworkCollector interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// Loop is the push contract both variants share: fetch and write snapshots
// on the session until a terminal write error or a collector failure. Run
// returns the collector error that ended the loop, nil for the normal
// stream-closed exit.
type Loop interface {
	Run(ctx context.Context, s *Session) error
}

// HostLoop pushes host snapshots. Every collect goes through the execution
// pool, so a saturated pool suspends the loop instead of stacking blocking
// calls; an empty snapshot is skipped rather than written. The collector's
// own sample latency paces the loop; there is no added sleep.
type HostLoop struct {
	Source HostCollector
	Pool   *execpool.Pool
}

func (l *HostLoop) Run(ctx context.Context, s *Session) error {
	for {
		data, err := l.Pool.Do(ctx, l.Source.Snapshot)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		if err := s.WriteText(data); err != nil {
			return nil
		}
	}
}

// NetworkLoop pushes network snapshots. The collector is called directly and
// every snapshot is written.
type NetworkLoop struct {
	Source NetworkCollector
}

func (l *NetworkLoop) Run(ctx context.Context, s *Session) error {
	for {
		data, err := l.Source.Snapshot(ctx)
		if err != nil {
			return err
		}
		if err := s.WriteText(data); err != nil {
			return nil
		}
	}
}
