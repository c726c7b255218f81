// Package config defines the pipeline service configuration and its
// loader. Precedence: built-in defaults, then the YAML file, then
// environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Pipeline  PipelineConfig  `yaml:"pipeline" env:"PIPELINE"`
	Monitor   MonitorConfig   `yaml:"monitor" env:"MONITOR"`
	Catalog   CatalogConfig   `yaml:"catalog" env:"CATALOG"`
	History   HistoryConfig   `yaml:"history" env:"HISTORY"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// HTTPPort is the API listen port.
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// ReadTimeout and WriteTimeout bound the HTTP server.
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RateLimit is requests per second per server; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	// RateBurst is the limiter burst size.
	RateBurst int `yaml:"rate_burst" env:"RATE_BURST"`
	// JWTSecret enables bearer-token auth on mutating endpoints when
	// non-empty.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	// GenerateWaitTimeout is how long a synchronous generate call
	// waits for its future before returning 202.
	GenerateWaitTimeout time.Duration `yaml:"generate_wait_timeout" env:"GENERATE_WAIT_TIMEOUT"`
}

// PipelineConfig configures the coordinator and the strategies.
type PipelineConfig struct {
	// MaxConcurrentGeneration is the batch-drain concurrency ceiling.
	MaxConcurrentGeneration int `yaml:"max_concurrent_generation" env:"MAX_CONCURRENT_GENERATION"`
	// ImageLoader selects the reference-image loader: "http" or
	// "synthetic".
	ImageLoader string `yaml:"image_loader" env:"IMAGE_LOADER"`
	// ImageTimeout bounds one reference-image fetch.
	ImageTimeout time.Duration `yaml:"image_timeout" env:"IMAGE_TIMEOUT"`
}

// MonitorConfig configures the performance monitor thresholds.
type MonitorConfig struct {
	MemoryThresholdBytes int64         `yaml:"memory_threshold_bytes" env:"MEMORY_THRESHOLD_BYTES"`
	EvictionAge          time.Duration `yaml:"eviction_age" env:"EVICTION_AGE"`
	ActiveModelThreshold int           `yaml:"active_model_threshold" env:"ACTIVE_MODEL_THRESHOLD"`
	RelaxFactor          float64       `yaml:"relax_factor" env:"RELAX_FACTOR"`
}

// CatalogConfig points at the species catalog fed to the pipeline at
// startup.
type CatalogConfig struct {
	// Path is the catalog YAML file; empty disables startup warmup.
	Path string `yaml:"path" env:"PATH"`
}

// HistoryConfig configures the generation audit log.
type HistoryConfig struct {
	// Enabled toggles history recording.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Driver is one of sqlite, postgres, mysql.
	Driver string `yaml:"driver" env:"DRIVER"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path" env:"PATH"`
	// Connection settings for the server drivers.
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	Name     string `yaml:"name" env:"NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
}

// DSN renders the driver-specific connection string.
func (h HistoryConfig) DSN() string {
	switch h.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			h.Host, h.Port, h.User, h.Password, h.Name, h.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			h.User, h.Password, h.Host, h.Port, h.Name)
	default:
		return h.Path
	}
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap output sinks.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:            8080,
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        60 * time.Second,
			ShutdownTimeout:     15 * time.Second,
			RateLimit:           50,
			RateBurst:           100,
			GenerateWaitTimeout: 30 * time.Second,
		},
		Pipeline: PipelineConfig{
			MaxConcurrentGeneration: 2,
			ImageLoader:             "synthetic",
			ImageTimeout:            30 * time.Second,
		},
		Monitor: MonitorConfig{
			MemoryThresholdBytes: 256 << 20,
			EvictionAge:          10 * time.Minute,
			ActiveModelThreshold: 64,
			RelaxFactor:          0.8,
		},
		History: HistoryConfig{
			Enabled: false,
			Driver:  "sqlite",
			Path:    "oceanforest.db",
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "oceanforest",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}
