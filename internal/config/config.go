package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	NodeID          int64
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
}

// fileConfig is the YAML shape. Durations are strings ("30m", "20s") so the
// file format matches what time.ParseDuration accepts.
type fileConfig struct {
	Addr            string `yaml:"addr"`
	DBPath          string `yaml:"dbPath"`
	LogLevel        string `yaml:"logLevel"`
	NodeID          *int64 `yaml:"nodeId"`
	RefreshInterval string `yaml:"refreshInterval"`
	FetchTimeout    string `yaml:"fetchTimeout"`
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		DBPath:          "./data/feedbox.db",
		LogLevel:        "info",
		NodeID:          0,
		RefreshInterval: 30 * time.Minute,
		FetchTimeout:    30 * time.Second,
	}
}

// Load builds the configuration from an optional YAML file (FEEDBOX_CONFIG)
// layered under environment variables. Environment always wins.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("FEEDBOX_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		if file.Addr != "" {
			cfg.Addr = file.Addr
		}
		if file.DBPath != "" {
			cfg.DBPath = file.DBPath
		}
		if file.LogLevel != "" {
			cfg.LogLevel = file.LogLevel
		}
		if file.NodeID != nil {
			cfg.NodeID = *file.NodeID
		}
		if file.RefreshInterval != "" {
			interval, err := time.ParseDuration(file.RefreshInterval)
			if err != nil {
				return Config{}, fmt.Errorf("parse refreshInterval: %w", err)
			}
			cfg.RefreshInterval = interval
		}
		if file.FetchTimeout != "" {
			timeout, err := time.ParseDuration(file.FetchTimeout)
			if err != nil {
				return Config{}, fmt.Errorf("parse fetchTimeout: %w", err)
			}
			cfg.FetchTimeout = timeout
		}
	}

	if addr := os.Getenv("FEEDBOX_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if path := os.Getenv("FEEDBOX_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if level := os.Getenv("FEEDBOX_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if raw := os.Getenv("FEEDBOX_NODE_ID"); raw != "" {
		nodeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse FEEDBOX_NODE_ID: %w", err)
		}
		cfg.NodeID = nodeID
	}
	if raw := os.Getenv("FEEDBOX_REFRESH_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse FEEDBOX_REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = interval
	}
	if raw := os.Getenv("FEEDBOX_FETCH_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse FEEDBOX_FETCH_TIMEOUT: %w", err)
		}
		cfg.FetchTimeout = timeout
	}

	cfg.DBPath = filepath.Clean(cfg.DBPath)
	return cfg, nil
}
