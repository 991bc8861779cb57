package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"etf-dashboard/internal/pipeline"
)

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Source   SourceConfig   `envconfig:"SOURCE"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Security SecurityConfig `envconfig:"SECURITY"`
	Tracing  TracingConfig  `envconfig:"OTEL"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"8084"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

type SourceConfig struct {
	DataDir        string `envconfig:"DATA_DIR" default:"."`
	FilePattern    string `envconfig:"FILE_PATTERN" default:"Thematic ETF_%s.xlsx"`
	FooterRows     int    `envconfig:"FOOTER_ROWS" default:"2"`
	ReturnMode     string `envconfig:"RETURN_MODE" default:"percent"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	SchemaFile     string `envconfig:"SCHEMA_FILE"`

	// Schema is resolved from the defaults and SchemaFile, not from the env.
	Schema pipeline.Schema `ignored:"true"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// TracingConfig selects where finished spans go. "none" still records spans
// so request logs carry trace IDs.
type TracingConfig struct {
	ServiceName string  `envconfig:"SERVICE_NAME" default:"etf-dashboard"`
	Exporter    string  `envconfig:"TRACE_EXPORTER" default:"none"`
	SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"20"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

// Load reads an optional .env file, then the process environment, then the
// optional column schema file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	schema, err := LoadSchema(cfg.Source.SchemaFile)
	if err != nil {
		return nil, err
	}
	cfg.Source.Schema = schema

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadSchema returns the default column schema overlaid with the aliases in
// path. An empty path yields the defaults.
func LoadSchema(path string) (pipeline.Schema, error) {
	schema := pipeline.DefaultSchema()
	if path == "" {
		return schema, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema, fmt.Errorf("read schema file: %w", err)
	}

	var override pipeline.Schema
	if err := yaml.Unmarshal(data, &override); err != nil {
		return schema, fmt.Errorf("parse schema file %s: %w", path, err)
	}

	return schema.Merge(override), nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Source.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if strings.Count(c.Source.FilePattern, "%s") != 1 {
		return fmt.Errorf("file pattern %q must contain exactly one %%s for the date", c.Source.FilePattern)
	}

	if c.Source.FooterRows < 0 {
		return fmt.Errorf("footer rows cannot be negative, got %d", c.Source.FooterRows)
	}

	if _, err := pipeline.ParseReturnMode(c.Source.ReturnMode); err != nil {
		return err
	}

	if c.Source.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	validExporters := []string{"none", "stdout"}
	if !slices.Contains(validExporters, c.Tracing.Exporter) {
		return fmt.Errorf("invalid trace exporter %q, must be one of: %s", c.Tracing.Exporter, strings.Join(validExporters, ", "))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// PipelineOptions converts the source settings into cleaning options.
func (c *Config) PipelineOptions() pipeline.Options {
	mode, _ := pipeline.ParseReturnMode(c.Source.ReturnMode)
	return pipeline.Options{
		Schema:     c.Source.Schema,
		FooterRows: c.Source.FooterRows,
		ReturnMode: mode,
	}
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
