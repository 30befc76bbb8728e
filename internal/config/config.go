package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"clonemap/internal/classify"
	"clonemap/internal/walker"
)

type Config struct {
	// ClonesList is the duplicate report to load.
	ClonesList string   `yaml:"clones_list"`
	Exclude    []string `yaml:"exclude"`
	// ErrorBehavior overrides the per-command default when set.
	ErrorBehavior string `yaml:"error_behavior"`
	LogLevel      string `yaml:"log_level"`
	Format        string `yaml:"format"`
	AbsolutePaths bool   `yaml:"absolute_paths"`
	Color         string `yaml:"color"`
	Mode          string `yaml:"mode"`
	Prune         bool   `yaml:"prune"`
	// Workers bounds concurrent pruning; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		Exclude: []string{
			".git/",
			".svn/",
			".hg/",
		},
		LogLevel: "info",
		Format:   "text",
		Color:    "auto",
		Mode:     "strict",
		Prune:    true,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. A missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// An explicit empty list disables exclusions
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	return cfg, nil
}

// Validate checks every enumerated value and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.ErrorBehavior != "" {
		if _, err := walker.ParseErrorBehavior(c.ErrorBehavior); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log_level: %w", err))
	}
	switch c.Format {
	case "text", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("invalid format %q, must be one of: text, json, yaml", c.Format))
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color))
	}
	if _, err := classify.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}
