// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

// Package config defines the application configuration and its layered
// loading: struct defaults, optional YAML file, then environment
// variables, highest priority last.
package config

import (
	"fmt"
	"time"

	"github.com/Uri-do/gaiming/internal/logging"
	"github.com/Uri-do/gaiming/internal/recommend"
	"github.com/Uri-do/gaiming/internal/recommend/feedback"
)

// Config is the root application configuration.
type Config struct {
	// Logging configures the global structured logger.
	Logging logging.Config `json:"logging" koanf:"logging"`

	// Server configures the HTTP listener.
	Server ServerConfig `json:"server" koanf:"server"`

	// NATS configures the durable feedback bus.
	NATS NATSConfig `json:"nats" koanf:"nats"`

	// Recommend configures the recommendation engine.
	Recommend recommend.Config `json:"recommend" koanf:"recommend"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the bind address.
	Host string `json:"host" koanf:"host"`

	// Port is the listen port.
	Port int `json:"port" koanf:"port"`

	// ReadTimeout bounds request reading.
	ReadTimeout time.Duration `json:"read_timeout" koanf:"read_timeout"`

	// WriteTimeout bounds response writing.
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// NATSConfig configures the feedback message bus.
type NATSConfig struct {
	// Enabled switches from the in-process bus to NATS JetStream.
	Enabled bool `json:"enabled" koanf:"enabled"`

	feedback.NATSConfig `koanf:",squash"`
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:    false,
			NATSConfig: feedback.DefaultNATSConfig(),
		},
		Recommend: *recommend.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url must be set when nats is enabled")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}
