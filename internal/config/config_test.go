package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/configbuf/internal/configure"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Policy() != configure.PolicyPanic {
		t.Fatalf("expected panic policy by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Demo.Steps != DefaultConfig().Demo.Steps {
		t.Fatalf("expected default steps, got %d", cfg.Demo.Steps)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", cfg.LogLevel)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"invariants: log",
		"decoration:",
		"  top: 30",
		"demo:",
		"  interval: 5ms",
		"  checkpoint_every: 0",
		"",
	}, "\n"))

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Policy() != configure.PolicyLog {
		t.Fatalf("expected log policy")
	}
	if cfg.Decoration.Top != 30 || cfg.Decoration.Left != 4 {
		t.Fatalf("expected merged decoration, got %+v", cfg.Decoration)
	}
	if cfg.Demo.Interval != 5*time.Millisecond || cfg.Demo.CheckpointEvery != 0 {
		t.Fatalf("unexpected demo config %+v", cfg.Demo)
	}
}

func TestLoadFromPath_UnknownFieldFails(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "bogus: 1\n")); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "log_level: info\ndemo:\n  steps: 0\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "demo.steps" || verr.Line != 3 {
		t.Fatalf("expected demo.steps at line 3, got %s line %d", verr.Path, verr.Line)
	}
	if !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("expected file position in message, got %q", err.Error())
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"invariants", func(c *Config) { c.Invariants = "ignore" }, "invariants"},
		{"negative inset", func(c *Config) { c.Decoration.Left = -1 }, "decoration"},
		{"negative border", func(c *Config) { c.Decoration.BorderWidth = -1 }, "decoration.border_width"},
		{"zero interval", func(c *Config) { c.Demo.Interval = 0 }, "demo.interval"},
		{"empty end", func(c *Config) { c.Demo.End.Width = 0 }, "demo.end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %s, got %v", tt.path, err)
			}
		})
	}
}

func TestMarshal_RoundTripsThroughLoader(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cfg, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Demo.Interval != DefaultConfig().Demo.Interval {
		t.Fatalf("expected interval to survive, got %v", cfg.Demo.Interval)
	}
}
