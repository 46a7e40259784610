package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Digitizer.Driver != "simulator" {
		t.Fatalf("expected simulator driver, got %q", cfg.Digitizer.Driver)
	}
	if cfg.Digitizer.PollInterval != time.Millisecond {
		t.Fatalf("expected 1ms poll interval, got %s", cfg.Digitizer.PollInterval)
	}
	if cfg.Digitizer.Horizontal.Samples != 10000 || cfg.Digitizer.Horizontal.Segments != 20 {
		t.Fatalf("unexpected horizontal defaults %+v", cfg.Digitizer.Horizontal)
	}
	if cfg.Database.Enabled {
		t.Fatalf("database must be disabled by default")
	}
	if cfg.GetServerAddr() != "0.0.0.0:8086" {
		t.Fatalf("unexpected server address %s", cfg.GetServerAddr())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
digitizer:
  driver: ps6000
  wait_timeout: 2s
  horizontal:
    sample_rate_ghz: 1.25
simulator:
  seed: 42
app:
  environment: test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Digitizer.Driver != "ps6000" {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Digitizer.WaitTimeout != 2*time.Second {
		t.Fatalf("expected 2s wait timeout, got %s", cfg.Digitizer.WaitTimeout)
	}
	if cfg.Digitizer.Horizontal.SampleRateGHz != 1.25 || cfg.Digitizer.Horizontal.Samples != 10000 {
		t.Fatalf("unexpected horizontal %+v", cfg.Digitizer.Horizontal)
	}
	if cfg.DriverOptions()["seed"] != 42 {
		t.Fatalf("expected seed option 42, got %v", cfg.DriverOptions()["seed"])
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DIGITIZER_SERVICE_DIGITIZER_DRIVER", "ps6000")
	t.Setenv("DIGITIZER_SERVICE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Digitizer.Driver != "ps6000" || cfg.Logging.Level != "debug" {
		t.Fatalf("environment not applied: driver=%q level=%q", cfg.Digitizer.Driver, cfg.Logging.Level)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad environment", "app:\n  environment: moon\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"zero wait", "digitizer:\n  wait_timeout: 0s\n"},
		{"db without host", "database:\n  enabled: true\n  host: \"\"\n"},
	}

	for _, tt := range tests {
		if _, err := Load(writeConfig(t, tt.body)); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for a missing explicit config file")
	}
}

// chdirTemp changes into a fresh temp directory for the duration of the
// test (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
