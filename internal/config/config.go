// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration. It is loaded once at startup
// and passed down; nothing reads the environment after that.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TomTomKey       string `env:"TOMTOM_API_KEY,required,notEmpty"`
	AlphaVantageKey string `env:"ALPHAVANTAGE_API_KEY,required,notEmpty"`

	// Symbols drives both the quotes endpoint and the prewarm worker.
	Symbols []string `env:"QUOTE_SYMBOLS" envDefault:"SPY,QQQ,VTI"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	for i, s := range cfg.Symbols {
		cfg.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return cfg, nil
}
