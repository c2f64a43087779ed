package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Logging   LogConfig       `toml:"logging" yaml:"logging"`
	Resources ResourceConfig  `toml:"resources" yaml:"resources"`
	Hostlink  HostlinkConfig  `toml:"hostlink" yaml:"hostlink"`
	RateLimit RateLimitConfig `toml:"rate_limit" yaml:"rate_limit"`
	Surface   SurfaceConfig   `toml:"surface" yaml:"surface"`
}

// ServerConfig holds HTTP server configuration for the host link.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8740" toml:"port" yaml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" toml:"host" yaml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development" yaml:"development"`
	File        string `envconfig:"LOG_FILE" toml:"file" yaml:"file"`
}

// ResourceConfig configures the res:// sandbox.
type ResourceConfig struct {
	Root          string            `envconfig:"RESOURCE_ROOT" default:"./www" toml:"root" yaml:"root"`
	IndexFile     string            `envconfig:"RESOURCE_INDEX" default:"index.html" toml:"index_file" yaml:"index_file"`
	Hidden        []string          `envconfig:"RESOURCE_HIDDEN" default:"**/.*" toml:"hidden" yaml:"hidden"`
	Sniff         bool              `envconfig:"RESOURCE_SNIFF" default:"false" toml:"sniff" yaml:"sniff"`
	MimeOverrides map[string]string `envconfig:"RESOURCE_MIME" toml:"mime_overrides" yaml:"mime_overrides"`
}

// HostlinkConfig holds settings for the WebSocket host link.
type HostlinkConfig struct {
	FrameRate    int  `envconfig:"HOSTLINK_FPS" default:"60" toml:"frame_rate" yaml:"frame_rate"`
	CommandRate  int  `envconfig:"HOSTLINK_COMMAND_RPS" default:"500" toml:"command_rate" yaml:"command_rate"`
	CommandBurst int  `envconfig:"HOSTLINK_COMMAND_BURST" default:"1000" toml:"command_burst" yaml:"command_burst"`
	QueueSize    int  `envconfig:"HOSTLINK_QUEUE" default:"256" toml:"queue_size" yaml:"queue_size"`
	Pumped       bool `envconfig:"HOSTLINK_PUMPED" default:"true" toml:"pumped" yaml:"pumped"`

	// Web lets surfaces load http and https pages. Off keeps them to res://.
	Web          bool `envconfig:"HOSTLINK_WEB" default:"false" toml:"web" yaml:"web"`
	WebTimeoutMS int  `envconfig:"HOSTLINK_WEB_TIMEOUT_MS" default:"30000" toml:"web_timeout_ms" yaml:"web_timeout_ms"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled" yaml:"enabled"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8740",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Resources: ResourceConfig{
			Root:      "./www",
			IndexFile: "index.html",
			Hidden:    []string{"**/.*"},
		},
		Hostlink: HostlinkConfig{
			FrameRate:    60,
			CommandRate:  500,
			CommandBurst: 1000,
			QueueSize:    256,
			Pumped:       true,
			WebTimeoutMS: 30000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Surface: DefaultSurface(),
	}
}
