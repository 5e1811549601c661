package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/tree"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Entrypoint != "_start" {
		t.Errorf("Entrypoint = %q, want _start", cfg.Entrypoint)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.LogCapacity != 1000 {
		t.Errorf("LogCapacity = %d, want 1000", cfg.LogCapacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Entrypoint != "_start" || cfg.InputFormat != "json" {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{
			name: "overrides",
			yaml: "entrypoint: run\ntimeout: 250ms\ninput_format: msgpack\nlog_capacity: 64\nmemory_limit_pages: 16\nlog_level: debug\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Entrypoint != "run" {
					t.Errorf("Entrypoint = %q", cfg.Entrypoint)
				}
				if cfg.Timeout != 250*time.Millisecond {
					t.Errorf("Timeout = %v", cfg.Timeout)
				}
				if cfg.MemoryLimitPages != 16 {
					t.Errorf("MemoryLimitPages = %d", cfg.MemoryLimitPages)
				}
				if cfg.Level() != zapcore.DebugLevel {
					t.Errorf("Level = %v", cfg.Level())
				}
				in, out, err := cfg.Formats()
				if err != nil {
					t.Fatal(err)
				}
				if in != tree.FormatMsgpack || out != tree.FormatJSON {
					t.Errorf("formats = %s/%s", in, out)
				}
			},
		},
		{name: "unknown key", yaml: "entry_point: run\n", wantErr: "entry_point"},
		{name: "bad format", yaml: "output_format: xml\n", wantErr: "output_format"},
		{name: "negative capacity", yaml: "log_capacity: -1\n", wantErr: "log_capacity"},
		{name: "bad level", yaml: "log_level: loud\n", wantErr: "log_level"},
		{name: "empty entrypoint", yaml: "entrypoint: \"\"\n", wantErr: "entrypoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err, tt.wantErr)
				}
				var target *errors.Error
				if !asConfigError(err, &target) {
					t.Errorf("error is not a config error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func asConfigError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if !ok {
		return false
	}
	*target = e
	return e.Phase == errors.PhaseConfig
}

func TestLoad(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fn.yaml")
		if err := os.WriteFile(path, []byte("timeout: 1s\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Timeout != time.Second {
			t.Errorf("Timeout = %v, want 1s", cfg.Timeout)
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fn.yaml")
		if err := os.WriteFile(path, []byte("entrypoint: main\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv(EnvVar, path)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Entrypoint != "main" {
			t.Errorf("Entrypoint = %q, want main", cfg.Entrypoint)
		}
	})

	t.Run("no path", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Entrypoint != "_start" {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
