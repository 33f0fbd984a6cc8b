package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Mining parameters
	MinSupport   float64 `mapstructure:"min_support" yaml:"min_support"`
	Metric       string  `mapstructure:"metric" yaml:"metric"`
	MinThreshold float64 `mapstructure:"min_threshold" yaml:"min_threshold"`
	MaxLen       int     `mapstructure:"max_len" yaml:"max_len"`
	Workers      int     `mapstructure:"workers" yaml:"workers"`

	// Data preparation
	Country           string `mapstructure:"country" yaml:"country"`
	ItemColumn        string `mapstructure:"item_column" yaml:"item_column"`
	PositiveOnly      bool   `mapstructure:"positive_only" yaml:"positive_only"`
	DropCancellations bool   `mapstructure:"drop_cancellations" yaml:"drop_cancellations"`
	RequireCustomer   bool   `mapstructure:"require_customer" yaml:"require_customer"`

	// Output
	Format    string `mapstructure:"format" yaml:"format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"min_support", "metric", "min_threshold", "max_len", "workers",
	"country", "item_column", "positive_only", "drop_cancellations", "require_customer",
	"format", "log_level", "log_format", "cache_path",
}

// Dir returns ~/.basketloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".basketloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.basketloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BASKETLOOM")
	v.AutomaticEnv()

	v.SetDefault("min_support", 0.03)
	v.SetDefault("metric", "lift")
	v.SetDefault("min_threshold", 3.0)
	v.SetDefault("max_len", 0)
	v.SetDefault("workers", 0)
	v.SetDefault("country", "United Kingdom")
	v.SetDefault("item_column", "description")
	v.SetDefault("positive_only", true)
	v.SetDefault("drop_cancellations", true)
	v.SetDefault("require_customer", true)
	v.SetDefault("format", "table")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache_path", "")

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.CachePath == "" {
		c.CachePath = filepath.Join(dir, "cache.db")
	}
	return &c, nil
}
