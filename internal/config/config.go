package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"salesreport/internal/engine"
	"salesreport/internal/logging"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given; it may be absent.
const DefaultPath = "config.yaml"

type Config struct {
	DataPath    string `yaml:"data_path"`
	Cutoff      string `yaml:"cutoff"`
	Quarter     string `yaml:"quarter"`
	PreviewRows int    `yaml:"preview_rows"`
	Locale      string `yaml:"locale"`

	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	RateLimit       float64       `yaml:"rate_limit"` // requests per second per client, 0 disables
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default mirrors the first-quarter 2024 report over sales_data.csv.
func Default() *Config {
	return &Config{
		DataPath:    "sales_data.csv",
		Quarter:     "2024-Q1",
		PreviewRows: engine.DefaultPreviewRows,
		Locale:      "en-US",
		Server: ServerConfig{
			Port:            "8080",
			RateLimit:       20,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads .env, then the YAML file at path, then environment overrides.
// A missing file is only an error when path is not DefaultPath.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataPath = getEnv("SALES_DATA_PATH", c.DataPath)
	c.Quarter = getEnv("SALES_QUARTER", c.Quarter)
	c.Cutoff = getEnv("SALES_CUTOFF", c.Cutoff)
	c.Locale = getEnv("SALES_LOCALE", c.Locale)
	c.PreviewRows = getEnvInt("SALES_PREVIEW_ROWS", c.PreviewRows)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.DataPath) == "" {
		problems = append(problems, "data_path cannot be empty")
	}
	if _, err := c.CutoffDate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.PreviewRows < 0 {
		problems = append(problems, fmt.Sprintf("invalid preview_rows %d: must not be negative", c.PreviewRows))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("invalid locale '%s'", c.Locale))
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "rate_limit must not be negative")
	} else if c.Server.RateLimit > 0 && c.Server.RateLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate_limit %g: must be 0 or at least 1", c.Server.RateLimit))
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "shutdown_timeout must be positive")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CutoffDate resolves the exclusive reporting cutoff from Cutoff or Quarter.
func (c *Config) CutoffDate() (time.Time, error) {
	return engine.ResolveCutoff(c.Cutoff, c.Quarter)
}

// Logging converts the log section for logging.New.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
