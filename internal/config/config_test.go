package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Pipeline.FrameStride != 30 {
		t.Errorf("FrameStride = %d, want the default 30", cfg.Pipeline.FrameStride)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posescout.toml")
	content := `
[database]
type = "postgres"
host = "db.internal"
name = "scout"

[pipeline]
min_scene_seconds = 3.5
frame_stride = 15

[search]
api_key = "key-from-file"
max_results = 25

[api]
bind = ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Type != "postgres" || cfg.Database.Host != "db.internal" || cfg.Database.Name != "scout" {
		t.Errorf("database section = %+v", cfg.Database)
	}
	if cfg.Pipeline.MinSceneSeconds != 3.5 || cfg.Pipeline.FrameStride != 15 {
		t.Errorf("pipeline section = %+v", cfg.Pipeline)
	}
	if cfg.Search.MaxResults != 25 || cfg.Search.APIKey != "key-from-file" {
		t.Errorf("search section = %+v", cfg.Search)
	}
	if cfg.API.Bind != ":9999" {
		t.Errorf("Bind = %q, want :9999", cfg.API.Bind)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Daemon.ScanIntervalSeconds != 900 {
		t.Errorf("ScanIntervalSeconds = %d, want 900", cfg.Daemon.ScanIntervalSeconds)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posescout.toml")
	if err := os.WriteFile(path, []byte("[search]\napi_key = \"from-file\"\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("POSESCOUT_YOUTUBE_API_KEY", "from-env")
	t.Setenv("POSESCOUT_DB_TYPE", "postgres")
	t.Setenv("POSESCOUT_DB_PORT", "5433")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Search.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want the environment value", cfg.Search.APIKey)
	}
	if cfg.Database.Type != "postgres" || cfg.Database.Port != 5433 {
		t.Errorf("database = %+v, want env overrides applied", cfg.Database)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown db type", content: "[database]\ntype = \"oracle\"\n"},
		{name: "zero stride", content: "[pipeline]\nframe_stride = 0\n"},
		{name: "max results above api cap", content: "[search]\nmax_results = 51\n"},
		{name: "zero scan interval", content: "[daemon]\nscan_interval_seconds = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "posescout.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posescout.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
