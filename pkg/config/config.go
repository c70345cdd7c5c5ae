package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yotamroshuji/cheese-fork/pkg/cheese"
	"github.com/yotamroshuji/cheese-fork/pkg/scraper"
)

// AppConfig holds the persistent defaults for collection runs
type AppConfig struct {
	Year             int           `yaml:"year,omitempty"`
	Concurrency      int           `yaml:"concurrency,omitempty"`
	FailThreshold    int           `yaml:"fail_threshold,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	CloseConnections bool          `yaml:"close_connections,omitempty"`
	BaseURL          string        `yaml:"base_url,omitempty"`
	VariableName     string        `yaml:"variable_name,omitempty"`
	AccentColor      string        `yaml:"accent_color,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *AppConfig {
	return &AppConfig{
		Concurrency:  20,
		Timeout:      10 * time.Second,
		VariableName: cheese.DefaultVariableName,
	}
}

// getConfigPath returns the absolute path to ~/.cheesefork.yaml
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cheesefork.yaml"), nil
}

// Load reads the configuration from disk. Values missing from the file keep their defaults.
func Load() (*AppConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration back to disk.
func Save(cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values a collection run depends on
func (c *AppConfig) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.FailThreshold < 0 {
		return fmt.Errorf("fail_threshold must not be negative, got %d", c.FailThreshold)
	}
	if c.VariableName != "" && !cheese.ValidVariableName(c.VariableName) {
		return fmt.Errorf("variable_name %q is not a valid JavaScript identifier", c.VariableName)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// ClientOptions returns the catalog client settings
func (c *AppConfig) ClientOptions() scraper.ClientOptions {
	return scraper.ClientOptions{
		BaseURL:          c.BaseURL,
		Timeout:          c.Timeout,
		CloseConnections: c.CloseConnections,
	}
}

// CollectOptions returns the collection settings
func (c *AppConfig) CollectOptions() scraper.CollectOptions {
	return scraper.CollectOptions{
		Year:          c.Year,
		Concurrency:   c.Concurrency,
		FailThreshold: c.FailThreshold,
	}
}
