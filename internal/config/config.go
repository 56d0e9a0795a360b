package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pingmon/internal/domain"
)

// Defaults mirror the stock configuration: one probe per second, 3s
// timeout, five minutes of history at the default cadence.
const (
	DefaultIntervalSec = 1.0
	DefaultTimeoutSec  = 3.0
	DefaultHistorySize = 300
	DefaultPacketSize  = 32
)

// Config is the YAML config file.
type Config struct {
	Ping  Ping   `yaml:"ping"`
	Hosts []Host `yaml:"hosts"`
}

// Ping holds the global probing parameters.
type Ping struct {
	// IntervalSec is the default probe interval in seconds.
	IntervalSec float64 `yaml:"interval"`
	// TimeoutSec is the per-probe timeout in seconds.
	TimeoutSec float64 `yaml:"timeout"`
	// HistorySize is how many outcomes each host retains.
	HistorySize int `yaml:"history_size"`
	// PacketSize is the echo payload size in bytes.
	PacketSize int `yaml:"packet_size"`
	// Privileged selects raw ICMP sockets (needs CAP_NET_RAW).
	Privileged bool `yaml:"privileged"`
}

// Host is one probe target as written in the config file.
type Host struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`
	// IntervalSec overrides the global interval for this host.
	IntervalSec *float64 `yaml:"interval"`
}

func (p Ping) Interval() time.Duration {
	return time.Duration(p.IntervalSec * float64(time.Second))
}

func (p Ping) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec * float64(time.Second))
}

// DomainHosts converts the file entries into immutable domain hosts.
func (c Config) DomainHosts() []domain.Host {
	out := make([]domain.Host, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		dh := domain.Host{
			Name:    h.Name,
			Address: h.Address,
			Enabled: h.Enabled == nil || *h.Enabled,
		}
		if h.Name == "" {
			dh.Name = h.Address
		}
		if h.IntervalSec != nil {
			dh.Interval = time.Duration(*h.IntervalSec * float64(time.Second))
		}
		out = append(out, dh)
	}
	return out
}

// Warnings reports suspicious but tolerated settings. A timeout above the
// interval means a silent host delays its own next tick.
func (c Config) Warnings() []string {
	var w []string
	if c.Ping.TimeoutSec > c.Ping.IntervalSec {
		w = append(w, fmt.Sprintf(
			"timeout (%.1fs) exceeds interval (%.1fs); an unresponsive host will delay its own ticks",
			c.Ping.TimeoutSec, c.Ping.IntervalSec))
	}
	for _, h := range c.Hosts {
		if h.IntervalSec != nil && c.Ping.TimeoutSec > *h.IntervalSec {
			w = append(w, fmt.Sprintf(
				"host %s: timeout (%.1fs) exceeds its interval override (%.1fs)",
				h.Address, c.Ping.TimeoutSec, *h.IntervalSec))
		}
	}
	return w
}

// Default is the built-in configuration used when no file exists.
func Default() Config {
	return Config{
		Ping: Ping{
			IntervalSec: DefaultIntervalSec,
			TimeoutSec:  DefaultTimeoutSec,
			HistorySize: DefaultHistorySize,
			PacketSize:  DefaultPacketSize,
		},
		Hosts: []Host{
			{Name: "Google DNS", Address: "8.8.8.8"},
			{Name: "Cloudflare DNS", Address: "1.1.1.1"},
			{Name: "Google", Address: "google.com"},
		},
	}
}

// Load reads and parses a YAML config file, filling defaults for omitted
// probing parameters.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to the built-in
// configuration when it does not. Parse errors still fail.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// LoadPath resolves the daemon's config. An explicitly configured path
// must exist; only the default location may fall back to the built-in
// configuration.
func LoadPath(path string, explicit bool) (Config, error) {
	if explicit {
		return Load(path)
	}
	return LoadOrDefault(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Ping.IntervalSec <= 0 {
		cfg.Ping.IntervalSec = DefaultIntervalSec
	}
	if cfg.Ping.TimeoutSec <= 0 {
		cfg.Ping.TimeoutSec = DefaultTimeoutSec
	}
	if cfg.Ping.HistorySize <= 0 {
		cfg.Ping.HistorySize = DefaultHistorySize
	}
	if cfg.Ping.PacketSize <= 0 {
		cfg.Ping.PacketSize = DefaultPacketSize
	}
}

// Env holds daemon-level settings taken from the environment, keeping the
// config file about hosts and probing only.
type Env struct {
	Addr            string        // API bind address
	LogDir          string        // logs directory
	ConfigPath      string        // YAML config location
	ConfigPathSet   bool          // CONFIG_PATH was given, so the file must exist
	SlackWebhook    string        // empty disables alerting
	AlertCooldown   time.Duration // minimum gap between degradation alerts
	AlertOnRecovery bool
}

func FromEnv() Env {
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	path := os.Getenv("CONFIG_PATH")
	pathSet := path != ""
	if path == "" {
		path = "pingmon.yaml"
	}

	cooldown := 5 * time.Minute
	if v := os.Getenv("ALERT_COOLDOWN_SEC"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s >= 0 {
			cooldown = time.Duration(s) * time.Second
		}
	}

	onRecovery := true
	if v := os.Getenv("ALERT_ON_RECOVERY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			onRecovery = b
		}
	}

	return Env{
		Addr:            addr,
		LogDir:          logDir,
		ConfigPath:      path,
		ConfigPathSet:   pathSet,
		SlackWebhook:    os.Getenv("SLACK_WEBHOOK"),
		AlertCooldown:   cooldown,
		AlertOnRecovery: onRecovery,
	}
}
