package collector

// HostStats is one host telemetry snapshot: CPU, memory, disk, uptime, and
// the top processes by resident memory. Sizes are GiB rounded to two
// decimals, process memory is MiB.
type HostStats struct {
	CPU       CPUStats      `json:"cpu"`
	Mem       UsageStats    `json:"mem"`
	Disk      UsageStats    `json:"disk"`
	User      string        `json:"user"`
	Platform  PlatformStats `json:"platform"`
	Uptime    string        `json:"uptime"`
	Processes []ProcessStat `json:"processes"`
}

type CPUStats struct {
	Usage float64 `json:"usage"`
	Temp  float64 `json:"temp"`
	Freq  float64 `json:"freq"`
}

// UsageStats covers both memory and disk: totals in GiB plus used percent.
type UsageStats struct {
	Total   float64 `json:"total"`
	Used    float64 `json:"used"`
	Free    float64 `json:"free"`
	Percent float64 `json:"percent"`
}

type PlatformStats struct {
	Distro string `json:"distro"`
	Kernel string `json:"kernel"`
	Uptime string `json:"uptime"`
}

type ProcessStat struct {
	PID  int32   `json:"pid"`
	Name string  `json:"name"`
	User string  `json:"username"`
	Mem  float64 `json:"mem"`
}

// NetworkStats is one network telemetry snapshot: MiB moved through one
// interface over the sample interval.
type NetworkStats struct {
	Stats InterfaceStats `json:"stats"`
}

type InterfaceStats struct {
	Interface string  `json:"interface"`
	In        float64 `json:"in"`
	Out       float64 `json:"out"`
}
