// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gateway's typed configuration once at startup.
//
// Everything external (environment variables, an optional YAML overlay) is
// read here and nowhere else; the rest of the gateway receives an already
// validated *Config and never touches os.Getenv again.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully resolved, immutable configuration for one gateway
// process.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// UpstreamConfig describes the OpenAI-compatible backend the gateway talks to.
type UpstreamConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StreamTimeout  time.Duration `yaml:"stream_timeout"`
	MaxConnections int           `yaml:"max_connections"`
	MaxIdleConns   int           `yaml:"max_idle_connections"`
	MaxRetries     int           `yaml:"max_retries"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultPort           = 11434
	defaultRequestTimeout = 60 * time.Second
	defaultStreamTimeout  = 300 * time.Second
	defaultMaxConnections = 100
	defaultMaxIdleConns   = 20
	defaultMaxRetries     = 3
	defaultLogLevel       = "INFO"
)

// Default returns the configuration the gateway would run with if no
// environment variables and no config file were present, except for the
// required OPENAI_API_KEY.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: defaultPort},
		Upstream: UpstreamConfig{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
			StreamTimeout:  defaultStreamTimeout,
			MaxConnections: defaultMaxConnections,
			MaxIdleConns:   defaultMaxIdleConns,
			MaxRetries:     defaultMaxRetries,
		},
		Log: LogConfig{Level: defaultLogLevel},
	}
}

// Load builds the configuration by starting from Default, layering an
// optional YAML file at path (missing file is not an error), and finally
// applying environment variable overrides, which always win. This mirrors
// how the gateway's teacher project layers config: file first, environment
// decorates on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("PROXY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToUpper(v)
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Upstream.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("PROXY_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	switch cfg.Log.Level {
	case "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL, got %q", cfg.Log.Level)
	}
	if cfg.Upstream.RequestTimeout < time.Second {
		return fmt.Errorf("REQUEST_TIMEOUT must be at least 1 second")
	}
	return nil
}
