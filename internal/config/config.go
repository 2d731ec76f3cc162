package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	JWTSecret        string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins   string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	TextureCacheSize int    `envconfig:"TEXTURE_CACHE_SIZE" default:"256"`
	OptionsFile      string `envconfig:"OPTIONS_FILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.TextureCacheSize < 0 {
		return nil, fmt.Errorf("TEXTURE_CACHE_SIZE must not be negative, got %d", cfg.TextureCacheSize)
	}
	return &cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	return l, nil
}

// Origins splits AllowedOrigins into host patterns for the websocket
// origin check.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
