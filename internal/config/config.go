package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Database contains persistence settings. Type selects the driver:
// "sqlite" or "postgres".
type Database struct {
	Type          string `toml:"type"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	Name          string `toml:"name"`
	SQLitePath    string `toml:"sqlite_path"`
	MigrationsDir string `toml:"migrations_dir"`
}

// API contains the HTTP surface settings. Token is the shared password
// required by the mutating endpoints; leave it empty to disable them.
type API struct {
	Bind  string `toml:"bind"`
	Token string `toml:"token"`
}

// Pipeline contains the scene classification settings.
type Pipeline struct {
	MinSceneSeconds float64 `toml:"min_scene_seconds"`
	FrameStride     int     `toml:"frame_stride"`
	FrameSize       int     `toml:"frame_size"`
	PoseServiceURL  string  `toml:"pose_service_url"`
	SceneThreshold  float64 `toml:"scene_threshold"`
}

// Search contains YouTube keyword search settings.
type Search struct {
	APIKey         string `toml:"api_key"`
	MaxResults     int64  `toml:"max_results"`
	KeywordsPerRun int    `toml:"keywords_per_run"`
}

// Metrics contains keyword quality aggregation settings. When
// UseContainerDuration is set, a video's probed duration replaces the
// last scene end time as that video's length in the quality metric.
type Metrics struct {
	UseContainerDuration bool `toml:"use_container_duration"`
}

// Media contains settings for the managed download directory.
type Media struct {
	Dir string `toml:"dir"`
}

// Daemon contains the periodic search/process loop settings.
type Daemon struct {
	ScanIntervalSeconds int `toml:"scan_interval_seconds"`
}

// Log contains logging settings.
type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Database Database `toml:"database"`
	API      API      `toml:"api"`
	Pipeline Pipeline `toml:"pipeline"`
	Search   Search   `toml:"search"`
	Metrics  Metrics  `toml:"metrics"`
	Media    Media    `toml:"media"`
	Daemon   Daemon   `toml:"daemon"`
	Log      Log      `toml:"log"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Database: Database{
			Type:          "sqlite",
			Host:          "localhost",
			Port:          5432,
			User:          "posescout",
			Name:          "posescout",
			SQLitePath:    "./posescout.db",
			MigrationsDir: "./migrations",
		},
		API: API{
			Bind: ":8080",
		},
		Pipeline: Pipeline{
			MinSceneSeconds: 5,
			FrameStride:     30,
			FrameSize:       640,
			PoseServiceURL:  "http://localhost:8090",
			SceneThreshold:  30,
		},
		Search: Search{
			MaxResults:     50,
			KeywordsPerRun: 100,
		},
		Media: Media{
			Dir: "./media",
		},
		Daemon: Daemon{
			ScanIntervalSeconds: 900,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path when it exists, applies environment
// overrides on top, and validates the result. A missing file is not an
// error; the defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// fall through to env + defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Database.Type, "POSESCOUT_DB_TYPE")
	setString(&c.Database.Host, "POSESCOUT_DB_HOST")
	setInt(&c.Database.Port, "POSESCOUT_DB_PORT")
	setString(&c.Database.User, "POSESCOUT_DB_USER")
	setString(&c.Database.Password, "POSESCOUT_DB_PASSWORD")
	setString(&c.Database.Name, "POSESCOUT_DB_NAME")
	setString(&c.Database.SQLitePath, "POSESCOUT_DB_PATH")
	setString(&c.Database.MigrationsDir, "POSESCOUT_MIGRATIONS_DIR")
	setString(&c.API.Bind, "POSESCOUT_API_BIND")
	setString(&c.API.Token, "POSESCOUT_API_TOKEN")
	setString(&c.Pipeline.PoseServiceURL, "POSESCOUT_POSE_SERVICE_URL")
	setString(&c.Search.APIKey, "POSESCOUT_YOUTUBE_API_KEY")
	setString(&c.Media.Dir, "POSESCOUT_MEDIA_DIR")
	setString(&c.Log.Level, "POSESCOUT_LOG_LEVEL")
}

func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.type: unsupported value %q", c.Database.Type)
	}
	if c.Pipeline.MinSceneSeconds < 0 {
		return fmt.Errorf("pipeline.min_scene_seconds: must not be negative")
	}
	if c.Pipeline.FrameStride <= 0 {
		return fmt.Errorf("pipeline.frame_stride: must be positive")
	}
	if c.Search.MaxResults <= 0 || c.Search.MaxResults > 50 {
		return fmt.Errorf("search.max_results: must be in 1..50")
	}
	if c.Search.KeywordsPerRun <= 0 {
		return fmt.Errorf("search.keywords_per_run: must be positive")
	}
	if c.Daemon.ScanIntervalSeconds <= 0 {
		return fmt.Errorf("daemon.scan_interval_seconds: must be positive")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
