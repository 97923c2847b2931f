package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendStatic = "static"
	BackendRemote = "remote"
	BackendChat   = "chat"
)

// Cache drivers.
const (
	CacheMemory    = "memory"
	CacheRistretto = "ristretto"
	CacheSQLite    = "sqlite"
	CacheRedis     = "redis"
)

// Config holds all ipstrategy configuration.
type Config struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	Backend  BackendConfig `yaml:"backend"`
	Remote   RemoteConfig  `yaml:"remote"`
	Chat     ChatConfig    `yaml:"chat"`
	Cache    CacheConfig   `yaml:"cache"`
	Gateway  GatewayConfig `yaml:"gateway"`
}

// BackendConfig selects the strategy source and its fallbacks.
type BackendConfig struct {
	// Kind is "static" (default), "remote" or "chat".
	Kind string `yaml:"kind"`
	// Fallback lists backend kinds tried in order when Kind fails.
	Fallback []string      `yaml:"fallback"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RemoteConfig defines the text-generation inference endpoint.
type RemoteConfig struct {
	URL               string  `yaml:"url"`
	Token             string  `yaml:"token"`
	MaxNewTokens      int     `yaml:"max_new_tokens"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
}

// ChatConfig defines an OpenAI-compatible chat completion endpoint.
type ChatConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
}

// CacheConfig controls the strategy cache.
type CacheConfig struct {
	Driver   string        `yaml:"driver"`
	TTL      time.Duration `yaml:"ttl"`
	Size     int           `yaml:"size"`
	MaxBytes int64         `yaml:"max_bytes"`
	DBPath   string        `yaml:"db_path"`
	RedisURL string        `yaml:"redis_url"`
}

// GatewayConfig bounds backend concurrency.
type GatewayConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Backend: BackendConfig{
			Kind:    BackendStatic,
			Timeout: 30 * time.Second,
		},
		Remote: RemoteConfig{
			URL:               "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2",
			MaxNewTokens:      1000,
			Temperature:       0.7,
			TopP:              0.9,
			RepetitionPenalty: 1.1,
		},
		Chat: ChatConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1000,
			Temperature: 0.7,
			TopP:        0.9,
		},
		Cache: CacheConfig{
			Driver: CacheMemory,
			TTL:    time.Hour,
			Size:   1024,
			DBPath: "ipstrategy.db",
		},
		Gateway: GatewayConfig{
			MaxConcurrent: 4,
		},
	}
}

// Load reads a YAML config file and expands environment variables. Variables
// from a .env file in the working directory are loaded first without
// overriding the process environment. A missing config file yields defaults.
// Credentials are never required here; a backend missing its credential
// reports a ConfigurationError when called.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg.Remote.Token == "" {
		cfg.Remote.Token = firstEnv("IPSTRATEGY_REMOTE_TOKEN", "HUGGINGFACE_API_TOKEN")
	}
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = firstEnv("IPSTRATEGY_OPENAI_API_KEY", "OPENAI_API_KEY")
	}
	if v := os.Getenv("IPSTRATEGY_BACKEND"); v != "" {
		cfg.Backend.Kind = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the structural settings. It does not check credentials.
func (c *Config) Validate() error {
	kinds := append([]string{c.Backend.Kind}, c.Backend.Fallback...)
	for _, k := range kinds {
		switch k {
		case BackendStatic, BackendRemote, BackendChat:
		default:
			return fmt.Errorf("invalid backend kind %q", k)
		}
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheRistretto, CacheSQLite:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache driver redis requires redis_url")
		}
	default:
		return fmt.Errorf("invalid cache driver %q", c.Cache.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %v", c.Backend.Timeout)
	}
	return nil
}
