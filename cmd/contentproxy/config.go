package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// proxyConfig is the YAML configuration for the content proxy.
type proxyConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Backend struct {
		BaseURL        string `yaml:"base_url"`
		ContentBaseURL string `yaml:"content_base_url"`
		UseRealContent bool   `yaml:"use_real_content"`
	} `yaml:"backend"`

	Cache struct {
		DefaultFreshness string `yaml:"default_freshness"`
		RedisAddr        string `yaml:"redis_addr"`
	} `yaml:"cache"`

	Languages []string `yaml:"languages"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	// compiled
	freshness time.Duration
}

// loadConfig reads and validates the YAML config. A missing file yields
// the defaults, so the proxy runs in mock mode out of the box.
func loadConfig(path string) (proxyConfig, error) {
	var cfg proxyConfig

	b, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return proxyConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return proxyConfig{}, err
	}

	// Env overrides for container deployments
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"ru", "he", "en"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	cfg.freshness = 5 * time.Minute
	if cfg.Cache.DefaultFreshness != "" {
		d, err := time.ParseDuration(cfg.Cache.DefaultFreshness)
		if err != nil {
			return proxyConfig{}, fmt.Errorf("cache.default_freshness: %w", err)
		}
		if d <= 0 {
			return proxyConfig{}, fmt.Errorf("cache.default_freshness must be positive")
		}
		cfg.freshness = d
	}

	if cfg.Backend.UseRealContent && cfg.Backend.BaseURL == "" {
		return proxyConfig{}, fmt.Errorf("backend.base_url is required with use_real_content")
	}

	return cfg, nil
}
