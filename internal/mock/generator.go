// Package mock provides synthetic collectors for running the service
// without touching the real system, behind cmd/server's -mock flag.
package mock

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sysmon/backend/internal/collector"
)

// HostSource fabricates host snapshots: CPU usage drifts on a sine wave with
// jitter, memory creeps up and resets, the process list stays fixed. Each
// Collect sleeps its interval first, mimicking the real collector's sample
// window so push loops pace the same way.
type HostSource struct {
	interval time.Duration

	mu   sync.Mutex
	rnd  *rand.Rand
	tick int
}

func NewHostSource(interval time.Duration) *HostSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &HostSource{
		interval: interval,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *HostSource) Collect() (*collector.HostStats, error) {
	time.Sleep(h.interval)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick++

	usage := 35 + 25*math.Sin(float64(h.tick)/7) + h.rnd.Float64()*10
	memUsed := 4 + float64(h.tick%120)*0.05

	uptime := uint64(h.tick) * uint64(h.interval/time.Second)
	return &collector.HostStats{
		CPU: collector.CPUStats{
			Usage: round2(usage),
			Temp:  round2(45 + usage/10),
			Freq:  2400,
		},
		Mem: collector.UsageStats{
			Total:   16,
			Used:    round2(memUsed),
			Free:    round2(16 - memUsed),
			Percent: round2(memUsed / 16 * 100),
		},
		Disk: collector.UsageStats{
			Total:   500,
			Used:    250,
			Free:    250,
			Percent: 50,
		},
		User: "mock",
		Platform: collector.PlatformStats{
			Distro: "mockOS 1.0",
			Kernel: "0.0.0-mock",
			Uptime: formatSeconds(uptime),
		},
		Uptime: formatSeconds(uptime),
		Processes: []collector.ProcessStat{
			{PID: 101, Name: "browser", User: "mock", Mem: round2(800 + h.rnd.Float64()*50)},
			{PID: 202, Name: "editor", User: "mock", Mem: round2(400 + h.rnd.Float64()*30)},
			{PID: 303, Name: "monitor", User: "mock", Mem: 12.5},
		},
	}, nil
}

func (h *HostSource) Snapshot() ([]byte, error) {
	st, err := h.Collect()
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

// NetworkSource fabricates interface throughput with bursty traffic.
type NetworkSource struct {
	iface    string
	interval time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewNetworkSource(iface string, interval time.Duration) *NetworkSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &NetworkSource{
		iface:    iface,
		interval: interval,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (n *NetworkSource) Collect(ctx context.Context) (*collector.NetworkStats, error) {
	timer := time.NewTimer(n.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	n.mu.Lock()
	in := n.rnd.Float64() * 2
	out := n.rnd.Float64() * 0.5
	if n.rnd.Intn(10) == 0 {
		in += 20 // download burst
	}
	n.mu.Unlock()

	return &collector.NetworkStats{
		Stats: collector.InterfaceStats{
			Interface: n.iface,
			In:        round3(in),
			Out:       round3(out),
		},
	}, nil
}

func (n *NetworkSource) Snapshot(ctx context.Context) ([]byte, error) {
	st, err := n.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

func formatSeconds(total uint64) string {
	d := time.Duration(total) * time.Second
	return d.String()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
