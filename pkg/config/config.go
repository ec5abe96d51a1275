package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort        = 3131
	DefaultLogCapacity = 500
)

// Environment variable names.
const (
	EnvPort        = "MOCKBAY_PORT"
	EnvPortCompat  = "PORT"
	EnvMongoURI    = "MONGODB_URI"
	EnvLogLevel    = "MOCKBAY_LOG_LEVEL"
	EnvLogFormat   = "MOCKBAY_LOG_FORMAT"
	EnvStaticDir   = "MOCKBAY_STATIC_DIR"
	EnvLogCapacity = "MOCKBAY_LOG_CAPACITY"
)

// Config holds the server configuration.
type Config struct {
	// Port is the listen port for the single combined server.
	Port int `yaml:"port"`

	// MongoURI selects the Mongo-backed definition store. Empty keeps
	// definitions in memory.
	MongoURI string `yaml:"mongoUri"`

	// LogCapacity bounds the in-memory traffic log.
	LogCapacity int `yaml:"logCapacity"`

	// LogLevel and LogFormat configure operational logging.
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// StaticDir, when set, is served for requests nothing else claims.
	StaticDir string `yaml:"staticDir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        DefaultPort,
		LogCapacity: DefaultLogCapacity,
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (skipped when path is empty or the file does not exist), then
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Missing file is fine; env and defaults still apply.
		case err != nil:
			return cfg, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. MOCKBAY_PORT wins
// over the plain PORT the original deployment used.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPortCompat); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvStaticDir); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv(EnvLogCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LogCapacity = n
		}
	}
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.LogCapacity < 1 {
		return fmt.Errorf("log capacity must be positive: %d", c.LogCapacity)
	}
	return nil
}
