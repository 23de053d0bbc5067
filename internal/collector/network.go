package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Network samples throughput of one interface: two counter readings spaced
// by the sample interval, reported as MiB in/out over that window. Collect
// suspends on the interval rather than blocking a thread, so the network
// push loop calls it directly instead of going through the execution pool.
type Network struct {
	iface    string
	interval time.Duration
}

func NewNetwork(iface string, interval time.Duration) *Network {
	if interval <= 0 {
		interval = time.Second
	}
	return &Network{iface: iface, interval: interval}
}

func (n *Network) Collect(ctx context.Context) (*NetworkStats, error) {
	before, err := n.counters()
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(n.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	after, err := n.counters()
	if err != nil {
		return nil, err
	}

	return &NetworkStats{
		Stats: InterfaceStats{
			Interface: n.iface,
			In:        deltaMiB(before.BytesRecv, after.BytesRecv),
			Out:       deltaMiB(before.BytesSent, after.BytesSent),
		},
	}, nil
}

// Snapshot serializes one snapshot to a single JSON text frame.
func (n *Network) Snapshot(ctx context.Context) ([]byte, error) {
	st, err := n.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

func (n *Network) counters() (psnet.IOCountersStat, error) {
	counters, err := psnet.IOCounters(true)
	if err != nil {
		return psnet.IOCountersStat{}, fmt.Errorf("net counters: %w", err)
	}
	for _, c := range counters {
		if c.Name == n.iface {
			return c, nil
		}
	}
	return psnet.IOCountersStat{}, fmt.Errorf("interface %q not found", n.iface)
}

// deltaMiB converts a counter delta to MiB with three decimals. Counters are
// cumulative, so a wrap shows up as before > after; report zero instead of a
// huge unsigned difference.
func deltaMiB(before, after uint64) float64 {
	if after < before {
		return 0
	}
	return math.Round(float64(after-before)/mib*1000) / 1000
}
