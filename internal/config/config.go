package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port           string         `yaml:"port"`
	APIBaseURL     string         `yaml:"api_base_url"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
	RequireNotes   bool           `yaml:"require_notes"`
	Housekeeping   string         `yaml:"housekeeping"` // 5-field cron expression
	Session        SessionConfig  `yaml:"session"`
	Database       DatabaseConfig `yaml:"database"`
}

// SessionConfig controls the browser session cookie and its lifetime
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// DatabaseConfig holds the session database configuration
type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // sqlite | postgres
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
}

// Load loads configuration from an optional YAML file (FABTRACK_CONFIG)
// and then from environment variables, which win.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("FABTRACK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:           "3210",
		RequestTimeout: 30 * time.Second,
		Housekeeping:   "*/10 * * * *",
		Session: SessionConfig{
			CookieName: "fabtrack_session",
			TTL:        12 * time.Hour,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "fabtrack.db",
			Host:       "localhost",
			Port:       "5432",
			Username:   "postgres",
			Database:   "fabtrack",
		},
	}
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.APIBaseURL = strings.TrimRight(getEnv("API_BASE_URL", c.APIBaseURL), "/")
	c.RequestTimeout = getDuration("REQUEST_TIMEOUT", c.RequestTimeout)
	c.RequireNotes = getBool("REQUIRE_NOTES", c.RequireNotes)
	c.Housekeeping = getEnv("HOUSEKEEPING_SCHEDULE", c.Housekeeping)

	c.Session.CookieName = getEnv("SESSION_COOKIE", c.Session.CookieName)
	c.Session.TTL = getDuration("SESSION_TTL", c.Session.TTL)
	c.Session.Secure = getBool("COOKIE_SECURE", c.Session.Secure)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.Host = getEnv("PG_HOST", c.Database.Host)
	c.Database.Port = getEnv("PG_PORT", c.Database.Port)
	c.Database.Username = getEnv("PG_USERNAME", c.Database.Username)
	c.Database.Password = getEnv("PG_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("PG_DATABASE", c.Database.Database)
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.APIBaseURL == "" {
		errs = append(errs, "API_BASE_URL is required")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		errs = append(errs, fmt.Sprintf("unknown DB_DRIVER %q", c.Database.Driver))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}
