package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Dataset struct {
		Source        string        `yaml:"source"` // csv or clickhouse
		Path          string        `yaml:"path"`
		DateColumn    string        `yaml:"date_column"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		WatchEnabled  bool          `yaml:"watch_enabled"`
		WatchInterval time.Duration `yaml:"watch_interval"`
	} `yaml:"dataset"`
	Dashboard struct {
		HistogramBins  int `yaml:"histogram_bins"`
		TablePrecision int `yaml:"table_precision"`
	} `yaml:"dashboard"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("DATASET_PATH"); v != "" {
		c.Dataset.Path = v
	}
	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		c.Dataset.Source = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Dataset.Source == "" {
		c.Dataset.Source = "csv"
	}
	if c.Dataset.DateColumn == "" {
		c.Dataset.DateColumn = "Date"
	}
	if c.Dataset.WatchInterval == 0 {
		c.Dataset.WatchInterval = 30 * time.Second
	}
	if c.Dashboard.HistogramBins == 0 {
		c.Dashboard.HistogramBins = 30
	}
	if c.Dashboard.TablePrecision == 0 {
		c.Dashboard.TablePrecision = 4
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "volpulse"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Dataset.Source != "csv" && c.Dataset.Source != "clickhouse" {
		return fmt.Errorf("dataset.source must be 'csv' or 'clickhouse', got '%s'", c.Dataset.Source)
	}
	if c.Dataset.Source == "csv" && c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required for csv source")
	}
	if c.Dataset.Source == "clickhouse" {
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for clickhouse source")
		}
		if c.ClickHouse.Table == "" {
			return fmt.Errorf("clickhouse.table is required for clickhouse source")
		}
	}
	if c.Dashboard.HistogramBins < 1 {
		return fmt.Errorf("dashboard.histogram_bins must be positive")
	}
	return nil
}
