// Package collector samples host and network telemetry through gopsutil and
// shapes it into the snapshot structs the stream pushes.
package collector

import (
	"encoding/json"
	"fmt"
	"math"
	"os/user"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

const (
	gib = 1024.0 * 1024.0 * 1024.0
	mib = 1024.0 * 1024.0
)

// Host samples full host snapshots. Collect blocks for about a second (the
// CPU usage sample interval), which is what paces the host push loop.
type Host struct {
	procCount int
	diskPath  string
	log       *zap.Logger
}

func NewHost(procCount int, log *zap.Logger) *Host {
	return &Host{procCount: procCount, diskPath: "/", log: log}
}

// Collect gathers one host snapshot. Individual probe failures (no sensors,
// no current user) degrade to zero values rather than failing the snapshot;
// only the CPU usage sample, memory, and disk probes are load-bearing.
func (h *Host) Collect() (*HostStats, error) {
	usage, err := cpu.Percent(time.Second, false)
	if err != nil {
		return nil, fmt.Errorf("cpu usage: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	du, err := disk.Usage(h.diskPath)
	if err != nil {
		return nil, fmt.Errorf("disk %s: %w", h.diskPath, err)
	}

	st := &HostStats{
		CPU: CPUStats{
			Usage: round2(first(usage)),
			Temp:  h.temperature(),
			Freq:  h.frequency(),
		},
		Mem: UsageStats{
			Total:   round2(float64(vm.Total) / gib),
			Used:    round2(float64(vm.Used) / gib),
			Free:    round2(float64(vm.Free) / gib),
			Percent: round2(vm.UsedPercent),
		},
		Disk: UsageStats{
			Total:   round2(float64(du.Total) / gib),
			Used:    round2(float64(du.Used) / gib),
			Free:    round2(float64(du.Free) / gib),
			Percent: round2(du.UsedPercent),
		},
		User:      currentUser(),
		Processes: h.processes(),
	}

	if secs, err := host.Uptime(); err == nil {
		st.Uptime = formatUptime(secs)
	}
	st.Platform = h.platform(st.Uptime)

	return st, nil
}

// Snapshot serializes one snapshot to a single JSON text frame.
func (h *Host) Snapshot() ([]byte, error) {
	st, err := h.Collect()
	if err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

func (h *Host) temperature() float64 {
	sensors, err := host.SensorsTemperatures()
	if err != nil {
		return 0
	}
	return cpuTemperature(sensors)
}

func (h *Host) frequency() float64 {
	info, err := cpu.Info()
	if err != nil || len(info) == 0 {
		return 0
	}
	return round2(info[0].Mhz)
}

func (h *Host) platform(uptime string) PlatformStats {
	st := PlatformStats{Uptime: uptime}
	if info, err := host.Info(); err == nil {
		st.Distro = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		st.Kernel = info.KernelVersion
	}
	return st
}

// processes lists the resident-memory top of the process table. Processes
// that vanish or deny access mid-scan are skipped, as the scan is not
// atomic.
func (h *Host) processes() []ProcessStat {
	procs, err := process.Processes()
	if err != nil {
		h.log.Warn("process scan failed", zap.Error(err))
		return nil
	}

	stats := make([]ProcessStat, 0, len(procs))
	for _, p := range procs {
		memInfo, err := p.MemoryInfo()
		if err != nil || memInfo == nil {
			continue
		}
		name, err := p.Name()
		if err != nil {
			continue
		}
		username, _ := p.Username()
		stats = append(stats, ProcessStat{
			PID:  p.Pid,
			Name: name,
			User: username,
			Mem:  round2(float64(memInfo.RSS) / mib),
		})
	}
	return topByMemory(stats, h.procCount)
}

// cpuTemperature picks the CPU package sensor out of the sensor list,
// preferring the well-known Linux driver names before settling for anything
// that mentions the CPU at all.
func cpuTemperature(sensors []host.TemperatureStat) float64 {
	prefixes := []string{"coretemp", "k10temp", "cpu_thermal", "cpu"}
	for _, prefix := range prefixes {
		for _, s := range sensors {
			if strings.Contains(strings.ToLower(s.SensorKey), prefix) {
				return round2(s.Temperature)
			}
		}
	}
	return 0
}

// topByMemory sorts descending by resident memory and keeps the first n.
func topByMemory(stats []ProcessStat, n int) []ProcessStat {
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Mem > stats[j].Mem
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// formatUptime renders seconds as "2 days, 3 hours, 4 minutes, 5 seconds",
// omitting leading units that are zero.
func formatUptime(totalSeconds uint64) string {
	days := totalSeconds / 86400
	hours := totalSeconds % 86400 / 3600
	minutes := totalSeconds % 3600 / 60
	seconds := totalSeconds % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%d %s, ", days, plural(days, "day"))
	}
	if b.Len() > 0 || hours > 0 {
		fmt.Fprintf(&b, "%d %s, ", hours, plural(hours, "hour"))
	}
	if b.Len() > 0 || minutes > 0 {
		fmt.Fprintf(&b, "%d %s, ", minutes, plural(minutes, "minute"))
	}
	fmt.Fprintf(&b, "%d %s", seconds, plural(seconds, "second"))
	return b.String()
}

func plural(n uint64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func first(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}
