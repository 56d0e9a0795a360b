package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pingmon.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeFile(t, `
ping:
  interval: 2.0
  timeout: 1.5
  history_size: 50
  packet_size: 64
  privileged: true
hosts:
  - name: Gateway
    address: 192.168.1.1
  - name: Slow host
    address: example.com
    interval: 10
  - name: Disabled
    address: 10.0.0.1
    enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Ping.Interval() != 2*time.Second {
		t.Fatalf("interval: got %v", cfg.Ping.Interval())
	}
	if cfg.Ping.Timeout() != 1500*time.Millisecond {
		t.Fatalf("timeout: got %v", cfg.Ping.Timeout())
	}
	if cfg.Ping.HistorySize != 50 || cfg.Ping.PacketSize != 64 || !cfg.Ping.Privileged {
		t.Fatalf("ping params: %+v", cfg.Ping)
	}

	hosts := cfg.DomainHosts()
	if len(hosts) != 3 {
		t.Fatalf("hosts: got %d", len(hosts))
	}
	if !hosts[0].Enabled || hosts[0].Interval != 0 {
		t.Fatalf("host 0: %+v", hosts[0])
	}
	if hosts[1].Interval != 10*time.Second {
		t.Fatalf("host 1 override: got %v", hosts[1].Interval)
	}
	if hosts[2].Enabled {
		t.Fatalf("host 2 must be disabled: %+v", hosts[2])
	}
}

func TestLoad_OmittedParamsGetDefaults(t *testing.T) {
	path := writeFile(t, `
hosts:
  - address: 8.8.8.8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ping.IntervalSec != DefaultIntervalSec ||
		cfg.Ping.TimeoutSec != DefaultTimeoutSec ||
		cfg.Ping.HistorySize != DefaultHistorySize ||
		cfg.Ping.PacketSize != DefaultPacketSize {
		t.Fatalf("defaults not applied: %+v", cfg.Ping)
	}

	// Nameless host falls back to its address.
	if h := cfg.DomainHosts()[0]; h.Name != "8.8.8.8" {
		t.Fatalf("host name: got %q", h.Name)
	}
}

func TestLoad_BadYAMLFails(t *testing.T) {
	path := writeFile(t, "ping: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must yield defaults: %v", err)
	}
	if len(cfg.Hosts) == 0 || cfg.Ping.IntervalSec != DefaultIntervalSec {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadPath_ExplicitMissingPathFails(t *testing.T) {
	// A user-supplied path with a typo must fail loudly, never silently
	// probe the built-in default hosts.
	missing := filepath.Join(t.TempDir(), "typo.yaml")
	if _, err := LoadPath(missing, true); err == nil {
		t.Fatal("explicit missing path must error")
	}
}

func TestLoadPath_DefaultMissingPathFallsBack(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "pingmon.yaml"), false)
	if err != nil {
		t.Fatalf("default path may fall back to defaults: %v", err)
	}
	if len(cfg.Hosts) != len(Default().Hosts) {
		t.Fatalf("expected built-in hosts, got %d", len(cfg.Hosts))
	}
}

func TestLoadPath_ExplicitExistingPathLoads(t *testing.T) {
	path := writeFile(t, "hosts:\n  - address: 192.0.2.1\n")
	cfg, err := LoadPath(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Hosts) != 1 || cfg.Hosts[0].Address != "192.0.2.1" {
		t.Fatalf("unexpected hosts: %+v", cfg.Hosts)
	}
}

func TestWarnings_TimeoutAboveInterval(t *testing.T) {
	cfg := Default()
	cfg.Ping.IntervalSec = 1
	cfg.Ping.TimeoutSec = 5
	if w := cfg.Warnings(); len(w) == 0 {
		t.Fatal("expected a warning for timeout > interval")
	}

	cfg.Ping.TimeoutSec = 0.5
	if w := cfg.Warnings(); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}

	override := 0.2
	cfg.Hosts = append(cfg.Hosts, Host{Address: "fast.example", IntervalSec: &override})
	if w := cfg.Warnings(); len(w) != 1 {
		t.Fatalf("expected a per-host warning, got %v", w)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"API_ADDR", "LOG_DIR", "CONFIG_PATH",
		"SLACK_WEBHOOK", "ALERT_COOLDOWN_SEC", "ALERT_ON_RECOVERY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	env := FromEnv()
	if env.Addr != "127.0.0.1:8080" || env.LogDir != "logs" || env.ConfigPath != "pingmon.yaml" {
		t.Fatalf("unexpected defaults: %+v", env)
	}
	if env.ConfigPathSet {
		t.Fatal("default config path must not count as explicitly set")
	}
	if env.SlackWebhook != "" || env.AlertCooldown != 5*time.Minute || !env.AlertOnRecovery {
		t.Fatalf("unexpected alert defaults: %+v", env)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("CONFIG_PATH", "/etc/pingmon/pingmon.yaml")
	t.Setenv("ALERT_COOLDOWN_SEC", "60")
	t.Setenv("ALERT_ON_RECOVERY", "false")

	env := FromEnv()
	if env.Addr != ":9090" || env.ConfigPath != "/etc/pingmon/pingmon.yaml" {
		t.Fatalf("overrides not applied: %+v", env)
	}
	if !env.ConfigPathSet {
		t.Fatal("CONFIG_PATH override must be marked explicit")
	}
	if env.AlertCooldown != time.Minute || env.AlertOnRecovery {
		t.Fatalf("alert overrides not applied: %+v", env)
	}
}
