package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/JuniperLectionary/core/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lectionary.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Translation", cfg.Translation, "NAB"},
		{"Workers", cfg.Workers, 0},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "text"},
		{"Normalize.CompleteBook", cfg.Normalize.CompleteBook, true},
		{"Normalize.KeepPlus", cfg.Normalize.KeepPlus, false},
		{"Normalize.ValidateVerses", cfg.Normalize.ValidateVerses, true},
		{"Output.Path", cfg.Output.Path, "lectionary.json"},
		{"Output.Compress", cfg.Output.Compress, false},
		{"Server.Port", cfg.Server.Port, 8080},
		{"File", cfg.File, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
translation: kjv
catalogue: days.yaml
workers: 4
log:
  level: debug
  format: json
normalize:
  keep_plus: true
  complete_book: false
output:
  path: out/lectionary.json.xz
  compress: true
  digest: true
store:
  path: lectionary.db
server:
  port: 9090
  allowed_origins:
    - https://example.org
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if cfg.Translation != "kjv" || cfg.Catalogue != "days.yaml" || cfg.Workers != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Normalize.KeepPlus || cfg.Normalize.CompleteBook || !cfg.Normalize.HandleCf {
		t.Errorf("Normalize = %+v", cfg.Normalize)
	}
	if !cfg.Output.Compress || !cfg.Output.Digest || cfg.Store.Path != "lectionary.db" {
		t.Errorf("Output = %+v, Store = %+v", cfg.Output, cfg.Store)
	}
	if cfg.Server.Port != 9090 || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}

	table, err := cfg.Table()
	if err != nil || table.ID() != "KJV" {
		t.Errorf("Table() = %v, %v", table, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LECTIONARY_WORKERS", "3")
	t.Setenv("LECTIONARY_LOG_LEVEL", "warn")
	t.Setenv("LECTIONARY_NORMALIZE_EMPTY_FOR_NO_REFERENCE", "true")
	t.Setenv("LECTIONARY_SERVER_PORT", "7000")
	t.Setenv("LECTIONARY_SERVER_API_KEY", "0123456789abcdef")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if !cfg.Normalize.EmptyForNoReference {
		t.Error("Normalize.EmptyForNoReference = false, want true")
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Server.APIKey != "0123456789abcdef" {
		t.Errorf("Server.APIKey = %q", cfg.Server.APIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   func(t *testing.T) string
		target error
	}{
		{
			name: "missing explicit file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") },
		},
		{
			name:   "unknown translation",
			path:   func(t *testing.T) string { return writeConfig(t, "translation: Klingon\n") },
			target: errors.ErrUnsupported,
		},
		{
			name:   "negative workers",
			path:   func(t *testing.T) string { return writeConfig(t, "workers: -2\n") },
			target: errors.ErrInvalidInput,
		},
		{
			name: "bad log level",
			path: func(t *testing.T) string { return writeConfig(t, "log:\n  level: loud\n") },
		},
		{
			name:   "port out of range",
			path:   func(t *testing.T) string { return writeConfig(t, "server:\n  port: 70000\n") },
			target: errors.ErrInvalidInput,
		},
		{
			name:   "short api key",
			path:   func(t *testing.T) string { return writeConfig(t, "server:\n  api_key: abc\n") },
			target: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v is not %v", err, tt.target)
			}
		})
	}
}
