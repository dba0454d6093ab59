package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

// DataConfig locates the three source tables and the report output directory
type DataConfig struct {
	Dir            string `yaml:"dir" envconfig:"DIR" default:"data"`
	OrderItemsFile string `yaml:"order_items_file" envconfig:"ORDER_ITEMS_FILE" default:"order_items.csv"`
	ProductsFile   string `yaml:"products_file" envconfig:"PRODUCTS_FILE" default:"products.csv"`
	OrdersFile     string `yaml:"orders_file" envconfig:"ORDERS_FILE" default:"orders.csv"`
	ReportsDir     string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// AnalyticsConfig holds tunable analytics thresholds
type AnalyticsConfig struct {
	// LowConfidenceOrders is the minimum per-state order count below which
	// geographic aggregates are flagged as small samples.
	LowConfidenceOrders int `yaml:"low_confidence_orders" envconfig:"LOW_CONFIDENCE_ORDERS" default:"30"`
}

// Load builds the configuration: defaults, then an optional YAML file, then
// environment variables with the SHOPPULSE prefix.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	// Defaults come from the envconfig struct tags
	if err := envconfig.Process("SHOPPULSE", cfg); err != nil {
		return nil, fmt.Errorf("process defaults: %w", err)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	// Environment variables take precedence over the file. Processing the
	// whole struct again would re-apply the default tags over file values,
	// so the env pass goes through an overlay and only variables actually
	// present in the environment are copied back.
	overlay := *cfg
	if err := envconfig.Process("SHOPPULSE", &overlay); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	applyEnvOverrides(cfg, &overlay)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg, overlay *Config) {
	set := func(key string) bool {
		_, ok := os.LookupEnv("SHOPPULSE_" + key)
		return ok
	}

	if set("SERVER_PORT") {
		cfg.Server.Port = overlay.Server.Port
	}
	if set("SERVER_READ_TIMEOUT") {
		cfg.Server.ReadTimeout = overlay.Server.ReadTimeout
	}
	if set("SERVER_WRITE_TIMEOUT") {
		cfg.Server.WriteTimeout = overlay.Server.WriteTimeout
	}
	if set("SERVER_IDLE_TIMEOUT") {
		cfg.Server.IdleTimeout = overlay.Server.IdleTimeout
	}
	if set("SERVER_SHUTDOWN_TIMEOUT") {
		cfg.Server.ShutdownTimeout = overlay.Server.ShutdownTimeout
	}
	if set("SERVER_RATE_LIMIT_ENABLED") {
		cfg.Server.RateLimit.Enabled = overlay.Server.RateLimit.Enabled
	}
	if set("SERVER_RATE_LIMIT_RPS") {
		cfg.Server.RateLimit.RPS = overlay.Server.RateLimit.RPS
	}
	if set("SERVER_RATE_LIMIT_BURST") {
		cfg.Server.RateLimit.Burst = overlay.Server.RateLimit.Burst
	}
	if set("LOGGING_LEVEL") {
		cfg.Logging.Level = overlay.Logging.Level
	}
	if set("LOGGING_FORMAT") {
		cfg.Logging.Format = overlay.Logging.Format
	}
	if set("DATA_DIR") {
		cfg.Data.Dir = overlay.Data.Dir
	}
	if set("DATA_ORDER_ITEMS_FILE") {
		cfg.Data.OrderItemsFile = overlay.Data.OrderItemsFile
	}
	if set("DATA_PRODUCTS_FILE") {
		cfg.Data.ProductsFile = overlay.Data.ProductsFile
	}
	if set("DATA_ORDERS_FILE") {
		cfg.Data.OrdersFile = overlay.Data.OrdersFile
	}
	if set("DATA_REPORTS_DIR") {
		cfg.Data.ReportsDir = overlay.Data.ReportsDir
	}
	if set("ANALYTICS_LOW_CONFIDENCE_ORDERS") {
		cfg.Analytics.LowConfidenceOrders = overlay.Analytics.LowConfidenceOrders
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s (expected json or text)", c.Logging.Format)
	}
	if c.Analytics.LowConfidenceOrders < 1 {
		return fmt.Errorf("low_confidence_orders must be positive, got %d", c.Analytics.LowConfidenceOrders)
	}
	return nil
}
