package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Monitor MonitorConfig `yaml:"monitor"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type MonitorConfig struct {
	// PoolSize bounds concurrent blocking host collects across all sessions.
	PoolSize int `yaml:"pool_size"`
	// ClaimTTL is how long a registered worker may wait unclaimed before it
	// is recycled. Zero disables expiry.
	ClaimTTL time.Duration `yaml:"claim_ttl"`
	// Interface is the NIC the network snapshot samples.
	Interface string `yaml:"interface"`
	// SampleInterval is the network counter delta window.
	SampleInterval time.Duration `yaml:"sample_interval"`
	// ProcessCount is how many top-memory processes a host snapshot lists.
	ProcessCount int `yaml:"process_count"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 4500,
		},
		Monitor: MonitorConfig{
			PoolSize:       16,
			ClaimTTL:       3 * time.Second,
			Interface:      "wlan0",
			SampleInterval: time.Second,
			ProcessCount:   10,
		},
	}
}

// Load reads the yaml config at path over the defaults. A missing file is an
// error; a partial file keeps the defaults for whatever it omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration, for running without a file.
func Default() *Config {
	return defaultConfig()
}
