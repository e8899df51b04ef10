// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// ClickHouse configuration
	ClickHouse ClickHouseConfig

	// Ingestion configuration
	Ingest IngestConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// Report output configuration
	Report ReportConfig

	// Server configuration
	Server ServerConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"smartmoney"`
	Password string `envconfig:"DB_PASSWORD" default:"smartmoney"`
	Name     string `envconfig:"DB_NAME" default:"smart_money"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// ClickHouseConfig holds the optional ClickHouse transaction feed settings.
type ClickHouseConfig struct {
	DSN     string `envconfig:"CLICKHOUSE_DSN" default:""`
	Enabled bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
}

// IngestConfig holds websocket feed settings.
type IngestConfig struct {
	WSURL             string        `envconfig:"INGEST_WS_URL" default:"ws://localhost:8900/transactions"`
	ReconnectDelay    time.Duration `envconfig:"INGEST_RECONNECT_DELAY" default:"1s"`
	MaxReconnectDelay time.Duration `envconfig:"INGEST_MAX_RECONNECT_DELAY" default:"30s"`
	PingInterval      time.Duration `envconfig:"INGEST_PING_INTERVAL" default:"30s"`
	ReadTimeout       time.Duration `envconfig:"INGEST_READ_TIMEOUT" default:"60s"`
}

// AnalysisConfig holds the tunables of an analysis run.
type AnalysisConfig struct {
	SOLPriceUSD      float64       `envconfig:"ANALYSIS_SOL_PRICE_USD" default:"200"`
	WindowDays       int           `envconfig:"ANALYSIS_WINDOW_DAYS" default:"30"`
	DustThreshold    float64       `envconfig:"ANALYSIS_DUST_THRESHOLD" default:"0.01"`
	MinSharedTokens  int           `envconfig:"ANALYSIS_MIN_SHARED_TOKENS" default:"2"`
	MinBehaviorScore float64       `envconfig:"ANALYSIS_MIN_BEHAVIOR_SCORE" default:"0.3"`
	TopN             int           `envconfig:"ANALYSIS_TOP_N" default:"10"`
	BatchSize        int           `envconfig:"ANALYSIS_BATCH_SIZE" default:"50"`
	Concurrency      int           `envconfig:"ANALYSIS_CONCURRENCY" default:"4"`
	Interval         time.Duration `envconfig:"ANALYSIS_INTERVAL" default:"1h"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	OutputDir string `envconfig:"REPORT_OUTPUT_DIR" default:"./reports"`
}

// ServerConfig holds metrics server settings.
type ServerConfig struct {
	MetricsAddr     string        `envconfig:"SERVER_METRICS_ADDR" default:":9091"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}
