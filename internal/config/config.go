package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Data struct {
		Dir         string `yaml:"dir" env:"DATA_DIR"`
		DefaultFile string `yaml:"default_file" env:"DATA_DEFAULT_FILE"`
		Autosave    bool   `yaml:"autosave" env:"DATA_AUTOSAVE"`
		Seed        bool   `yaml:"seed" env:"DATA_SEED"`
	} `yaml:"data"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Path            string `yaml:"path" env:"DB_PATH"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		RedisAddr       string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword   string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB         int    `yaml:"redis_db" env:"REDIS_DB"`
		RedisKey        string `yaml:"redis_key" env:"REDIS_KEY"`
	} `yaml:"database"`

	Search struct {
		Fuzzy         bool `yaml:"fuzzy" env:"SEARCH_FUZZY"`
		FuzzyDistance int  `yaml:"fuzzy_distance" env:"SEARCH_FUZZY_DISTANCE"`
	} `yaml:"search"`

	Auth struct {
		Secret   string `yaml:"secret" env:"AUTH_SECRET"`
		Issuer   string `yaml:"issuer" env:"AUTH_ISSUER"`
		TokenTTL string `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
		File   string `yaml:"file" env:"LOG_FILE"`
	} `yaml:"logging"`
}

// Supported snapshot store drivers
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// LoadConfig loads configuration from a file, a .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration holding only the defaults.
func DefaultConfig() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Data.Dir = "data"
	config.Data.DefaultFile = "school.json"
	config.Data.Autosave = false
	config.Data.Seed = false

	config.Database.Driver = DriverSQLite
	config.Database.Path = "data/school.sqlite"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "schoolbook"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 1
	config.Database.MaxOpenConns = 5
	config.Database.ConnMaxLifetime = "1h"
	config.Database.RedisAddr = "localhost:6379"
	config.Database.RedisKey = "schoolbook:snapshot"

	config.Search.Fuzzy = true
	config.Search.FuzzyDistance = 1

	config.Auth.Issuer = "schoolbook"
	config.Auth.TokenTTL = "24h"

	config.Logging.Level = "info"
	config.Logging.Format = "text"
	config.Logging.File = "data/schoolbook.log"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Data.Dir) == "" {
		return fmt.Errorf("data directory is required")
	}

	switch config.Database.Driver {
	case DriverNone, DriverRedis:
	case DriverSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Search.FuzzyDistance < 0 {
		return fmt.Errorf("search fuzzy distance must not be negative")
	}

	if _, err := time.ParseDuration(config.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid auth token ttl format: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// TokenTTL returns the parsed operator token lifetime.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
