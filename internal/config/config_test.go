package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PageSize != DefaultPageSize || cfg.Keys.Quit != "q" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("round trip changed config: %+v vs %+v", again, cfg)
	}
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "page_size = 5\ntheme = \"purple\"\n[keys]\nquit = \"x\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PageSize != 5 || cfg.Keys.Quit != "x" || cfg.Theme != "purple" {
		t.Fatalf("explicit values lost: %+v", cfg)
	}
	if cfg.Keys.Add != "a" || cfg.CheckInterval != DefaultCheckInterval || cfg.LogFile != DefaultLogFileName {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
	if cfg.Accent() != Themes["purple"] {
		t.Fatalf("accent = %q", cfg.Accent())
	}
	d, err := cfg.Interval()
	if err != nil || d != time.Minute {
		t.Fatalf("interval = %v, %v", d, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		data string
		want error
	}{
		{"page_size = -1\n", ErrInvalidPageSize},
		{"check_interval = \"soon\"\n", ErrInvalidInterval},
		{"check_interval = \"-5s\"\n", ErrInvalidInterval},
		{"theme = \"orange\"\n", ErrInvalidTheme},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrCreate(path); !errors.Is(err, tt.want) {
			t.Fatalf("%q: err = %v, want %v", tt.data, err, tt.want)
		}
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("page_size = = 3"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Fatalf("path = %q", got)
	}
}
