package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ravinmor/sky-watcher/internal/model"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OpenSky   OpenSkyConfig   `yaml:"opensky"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Query     QueryConfig     `yaml:"query"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type OpenSkyConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
}

// RateLimitConfig throttles inbound requests to the HTTP facade
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // "DEBUG", "INFO", "ERROR"
}

// QueryConfig is the default bounding box used by the CLI when no flags are given
type QueryConfig struct {
	Min *model.Coordinate `yaml:"min"`
	Max *model.Coordinate `yaml:"max"`
}

// BoundingBox builds a box from whichever corners are configured
func (q QueryConfig) BoundingBox() model.BoundingBox {
	var box model.BoundingBox
	if q.Min != nil {
		box = box.WithMin(*q.Min)
	}
	if q.Max != nil {
		box = box.WithMax(*q.Max)
	}
	return box
}

func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.setDefaults()

	// Load from file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Addr returns the listen address for the HTTP facade
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func (c *Config) setDefaults() {
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 45 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 30 * time.Second

	c.OpenSky.BaseURL = "https://opensky-network.org/api"
	c.OpenSky.RequestTimeout = 30 * time.Second
	c.OpenSky.UserAgent = "sky-watcher/1.0"

	// anonymous OpenSky access allows roughly one request every 10 seconds
	c.RateLimit.RequestsPerSecond = 0.1
	c.RateLimit.BurstSize = 4

	c.Logging.Level = "INFO"
}

func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if baseURL := os.Getenv("OPENSKY_BASE_URL"); baseURL != "" {
		c.OpenSky.BaseURL = baseURL
	}

	if timeout := os.Getenv("OPENSKY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.OpenSky.RequestTimeout = d
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if rps := os.Getenv("RATE_LIMIT_RPS"); rps != "" {
		if r, err := strconv.ParseFloat(rps, 64); err == nil {
			c.RateLimit.RequestsPerSecond = r
		}
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if b, err := strconv.Atoi(burst); err == nil {
			c.RateLimit.BurstSize = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.OpenSky.BaseURL == "" {
		return fmt.Errorf("opensky base URL cannot be empty")
	}

	if c.OpenSky.RequestTimeout < 0 {
		return fmt.Errorf("opensky request timeout cannot be negative")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive")
	}

	if c.RateLimit.BurstSize < 1 {
		return fmt.Errorf("burst size must be at least 1")
	}

	c.Logging.Level = strings.ToUpper(c.Logging.Level)
	if c.Logging.Level != "DEBUG" && c.Logging.Level != "INFO" && c.Logging.Level != "ERROR" {
		return fmt.Errorf("log level must be 'DEBUG', 'INFO', or 'ERROR'")
	}

	return nil
}
