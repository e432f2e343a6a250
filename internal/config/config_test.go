package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "proverd.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadFull(t *testing.T) {
	p := writeConfig(t, `
bin_dir = "/opt/ladr/bin"
poll_interval = "250ms"
kill_grace = "2s"

[server]
listen = ":9090"
base_path = "/api"

[history]
dsn = "sqlite:///tmp/history.db"

[metrics]
enabled = false

[log]
level = "debug"
path = "/var/log/proverd.log"
max_size_mb = 5
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BinDir != "/opt/ladr/bin" {
		t.Fatalf("bin_dir = %q", cfg.BinDir)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll_interval = %s", cfg.PollInterval)
	}
	if cfg.KillGrace != 2*time.Second {
		t.Fatalf("kill_grace = %s", cfg.KillGrace)
	}
	if cfg.Server.Listen != ":9090" || cfg.Server.BasePath != "/api" {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.History.DSN != "sqlite:///tmp/history.db" {
		t.Fatalf("history dsn = %q", cfg.History.DSN)
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("metrics should be disabled")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Path != "/var/log/proverd.log" || cfg.Log.MaxSizeMB != 5 {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	p := writeConfig(t, `bin_dir = "/opt/ladr/bin"`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("poll_interval default = %s", cfg.PollInterval)
	}
	if cfg.Server.Listen != ":8080" {
		t.Fatalf("listen default = %q", cfg.Server.Listen)
	}
	if !cfg.Metrics.Enabled {
		t.Fatalf("metrics should default to enabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{},
		{BinDir: "bin"},
		{BinDir: "bin", PollInterval: time.Second},
		{BinDir: "bin", PollInterval: time.Second, KillGrace: time.Second},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
