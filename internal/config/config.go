package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"` // dev | prod
	} `yaml:"log"`
	Storage struct {
		Backend string `yaml:"backend"` // file | memory | redis | postgres | sqlite | local
		Dir     string `yaml:"dir"`
		Limit   int    `yaml:"limit"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sqlite"`
	Catalog struct {
		Source       string `yaml:"source"` // embedded | dir | remote | postgres
		Dir          string `yaml:"dir"`
		URL          string `yaml:"url"`
		DefaultTopic string `yaml:"default_topic"`
		Timeout      string `yaml:"timeout"`
	} `yaml:"catalog"`
	Quiz struct {
		TTL                string `yaml:"ttl"`
		CelebrationTimeout string `yaml:"celebration_timeout"`
	} `yaml:"quiz"`
	Client struct {
		APIBaseURL string `yaml:"api_base_url"`
		PHPPaths   bool   `yaml:"php_paths"`
	} `yaml:"client"`
	Local struct {
		Dir      string `yaml:"dir"`
		Snapshot string `yaml:"snapshot"`
	} `yaml:"local"`
}

// Default is the configuration used when no file exists: file-backed scores under
// ./scores and the embedded sample catalog.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Mode = "dev"
	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = "./scores"
	cfg.Catalog.Source = "embedded"
	cfg.Catalog.DefaultTopic = "react"
	return cfg
}

// Load reads YAML config from path over Default. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
