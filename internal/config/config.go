package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"liquidity-crisis/internal/analysis"
	"liquidity-crisis/internal/features"
	"liquidity-crisis/internal/model"
)

// EnvPrefix is prepended to every environment override, e.g. LCD_SERVER_PORT.
const EnvPrefix = "LCD"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Model    ModelConfig    `yaml:"model"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Detector DetectorConfig `yaml:"detector"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port string `yaml:"port"`
	// Env "production" switches gin to release mode.
	Env            string   `yaml:"env"`
	StaticDir      string   `yaml:"static_dir" split_words:"true"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" split_words:"true"`
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

type ModelConfig struct {
	// Path to the model artifact. Relative paths are resolved against the
	// config file directory first, then the working directory.
	Path string `yaml:"path"`
}

// ColumnsConfig names the non-feature columns of an uploaded dataset.
type ColumnsConfig struct {
	Group  string `yaml:"group"`
	Time   string `yaml:"time"`
	Target string `yaml:"target"`
}

// DetectorConfig holds the crisis quantile, in [0, 1].
type DetectorConfig struct {
	Quantile float64 `yaml:"quantile"`
}

type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" split_words:"true"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a fully populated config.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path (optional), overlays LCD_* environment variables,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads the YAML file without defaults, env overrides or validation.
// An empty path yields an empty config.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	var c Config
	if path == "" {
		return &c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Model.Path != "" && !filepath.IsAbs(c.Model.Path) {
		// Prefer interpreting relative paths as relative to the config file directory,
		// but fall back to the provided path (relative to cwd) if that doesn't exist.
		cand := filepath.Join(filepath.Dir(path), c.Model.Path)
		if _, err := os.Stat(cand); err == nil {
			c.Model.Path = cand
		}
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./web/dist"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Model.Path == "" {
		c.Model.Path = "liquidity_prediction_model.yaml"
	}
	if c.Columns.Group == "" {
		c.Columns.Group = model.ColumnGroup
	}
	if c.Columns.Time == "" {
		c.Columns.Time = model.ColumnTime
	}
	if c.Columns.Target == "" {
		c.Columns.Target = model.ColumnTarget
	}
	if c.Detector.Quantile == 0 {
		c.Detector.Quantile = analysis.DefaultCrisisQuantile
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Cache.CleanupInterval == 0 {
		c.Cache.CleanupInterval = 5 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Detector.Quantile <= 0 || c.Detector.Quantile >= 1 {
		return fmt.Errorf("detector.quantile must be in (0, 1), got %v", c.Detector.Quantile)
	}
	if c.Columns.Group == "" {
		return errors.New("columns.group is required")
	}
	if c.Columns.Group == c.Columns.Time || c.Columns.Group == c.Columns.Target {
		return errors.New("columns.group must differ from columns.time and columns.target")
	}
	if c.Server.MaxUploadBytes < 0 {
		return errors.New("server.max_upload_bytes must be >= 0")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must be >= 0")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool {
	return c.Server.Env == "production"
}

// Exclusions converts the column names into feature exclusions.
func (c ColumnsConfig) Exclusions() features.Exclusions {
	return features.Exclusions{
		Group:  c.Group,
		Time:   c.Time,
		Target: c.Target,
	}
}
