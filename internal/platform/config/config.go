package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL      = "https://yuki.tuuli.moe"
	DefaultRequestTimeout = 15 * time.Second

	fileName = "config.yaml"
)

// Config is the client configuration. Values come from, in increasing
// precedence: defaults, <data-dir>/config.yaml, <data-dir>/.env and the
// process environment.
type Config struct {
	DataDir string `yaml:"-"`
	DBPath  string `yaml:"-"`

	ServerURL      string        `yaml:"server_url" env:"YUKI_SERVER_URL"`
	AutoSubmit     bool          `yaml:"auto-submit" env:"YUKI_AUTO_SUBMIT"`
	SubmitFails    bool          `yaml:"submit-fails" env:"YUKI_SUBMIT_FAILS"`
	GDAccountID    int           `yaml:"gd_account_id" env:"YUKI_GD_ACCOUNT_ID"`
	GDUsername     string        `yaml:"gd_username" env:"YUKI_GD_USERNAME"`
	LogLevel       string        `yaml:"log_level" env:"YUKI_LOG_LEVEL"`
	Journal        bool          `yaml:"journal" env:"YUKI_JOURNAL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"YUKI_REQUEST_TIMEOUT"`
	OTELEndpoint   string        `yaml:"otel_endpoint,omitempty" env:"YUKI_OTEL_ENDPOINT"`
}

func Default(dataDir string) Config {
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "yuki.db"),
		ServerURL:      DefaultServerURL,
		AutoSubmit:     true,
		SubmitFails:    true,
		LogLevel:       "info",
		Journal:        true,
		RequestTimeout: DefaultRequestTimeout,
	}
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)

	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	raw, err := os.ReadFile(Path(dataDir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", fileName, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", fileName, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return cfg, nil
}

func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Save writes the file-backed settings of cfg to <data-dir>/config.yaml.
func Save(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(Path(cfg.DataDir), raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set changes one of the user-editable toggles by its settings key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "auto-submit", "submit-fails", "journal":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean: %w", key, err)
		}
		switch key {
		case "auto-submit":
			c.AutoSubmit = b
		case "submit-fails":
			c.SubmitFails = b
		default:
			c.Journal = b
		}
	case "server_url":
		c.ServerURL = value
	case "gd_username":
		c.GDUsername = value
	case "gd_account_id":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("gd_account_id expects an integer: %w", err)
		}
		c.GDAccountID = n
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
