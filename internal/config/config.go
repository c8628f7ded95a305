// Package config loads the gqlengine YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Schema        SchemaConfig        `yaml:"schema"`
	Executor      ExecutorConfig      `yaml:"executor"`
	Log           LogConfig           `yaml:"log"`
	Opentelemetry OpentelemetryConfig `yaml:"opentelemetry"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	Path            string   `yaml:"path"`
	Timeout         string   `yaml:"timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	Pretty          bool     `yaml:"pretty"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
	CORSOrigins     []string `yaml:"cors_origins"`
	MetadataHeaders []string `yaml:"metadata_headers"`
}

type SchemaConfig struct {
	// Files are SDL files merged into one schema.
	Files []string `yaml:"files"`
	// Data is an optional YAML or JSON file used as the root value.
	Data string `yaml:"data"`
}

type ExecutorConfig struct {
	// MaxConcurrency bounds concurrently running fields per selection set.
	// 0 means unbounded.
	MaxConcurrency int  `yaml:"max_concurrency"`
	Introspection  bool `yaml:"introspection"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OpentelemetryConfig struct {
	// Endpoint is the OTLP gRPC collector address. Empty disables tracing.
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Path:            "/graphql",
			Timeout:         "10s",
			ShutdownTimeout: "5s",
		},
		Executor: ExecutorConfig{Introspection: true},
		Log:      LogConfig{Level: "info", Format: "text"},
		Opentelemetry: OpentelemetryConfig{
			ServiceName: "gqlengine",
		},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := parseDuration("server.timeout", c.Server.Timeout); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("server.max_body_bytes must not be negative"))
	}
	if c.Executor.MaxConcurrency < 0 {
		errs = append(errs, errors.New("executor.max_concurrency must not be negative"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// TimeoutDuration returns the parsed server timeout. Empty means none.
func (c ServerConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration("", c.Timeout)
	return d
}

func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := parseDuration("", c.ShutdownTimeout)
	return d
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}
