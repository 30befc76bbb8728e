package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"clonemap/internal/classify"
	"clonemap/internal/config"
	"clonemap/internal/render"
	"clonemap/internal/walker"
)

// settings is the resolved configuration of one run.
type settings struct {
	ClonesList    string
	Exclude       []string
	ErrorBehavior walker.ErrorBehavior
	LogLevel      logrus.Level
	Format        render.Format
	Absolute      bool
	Colored       bool
	Mode          classify.Mode
	Prune         bool
	Workers       int
	Null          bool
	Stats         bool
}

// flagKeys maps config keys to the flags overriding them.
var flagKeys = map[string]string{
	"clones_list":    "clones-list",
	"exclude":        "exclude",
	"error_behavior": "errors",
	"log_level":      "log-level",
	"format":         "format",
	"absolute_paths": "absolute",
	"color":          "color",
	"mode":           "mode",
	"prune":          "prune",
	"workers":        "workers",
}

// loadSettings resolves every setting with the precedence flag, then
// environment, then config file, then built-in default. defaultBehavior
// applies when no error behavior is configured anywhere.
func loadSettings(flags *pflag.FlagSet, defaultBehavior walker.ErrorBehavior) (*settings, error) {
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CLONEMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("clones_list", "CLONEMAP_CLONES_LIST", "CLONES_LIST"); err != nil {
		return nil, err
	}

	v.SetDefault("clones_list", cfg.ClonesList)
	v.SetDefault("exclude", cfg.Exclude)
	v.SetDefault("error_behavior", cfg.ErrorBehavior)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("absolute_paths", cfg.AbsolutePaths)
	v.SetDefault("color", cfg.Color)
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("prune", cfg.Prune)
	v.SetDefault("workers", cfg.Workers)

	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	resolved := &config.Config{
		ClonesList:    v.GetString("clones_list"),
		Exclude:       v.GetStringSlice("exclude"),
		ErrorBehavior: v.GetString("error_behavior"),
		LogLevel:      v.GetString("log_level"),
		Format:        strings.ToLower(v.GetString("format")),
		AbsolutePaths: v.GetBool("absolute_paths"),
		Color:         strings.ToLower(v.GetString("color")),
		Mode:          v.GetString("mode"),
		Prune:         v.GetBool("prune"),
		Workers:       v.GetInt("workers"),
	}
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &settings{
		ClonesList:    resolved.ClonesList,
		Exclude:       resolved.Exclude,
		ErrorBehavior: defaultBehavior,
		Absolute:      resolved.AbsolutePaths,
		Prune:         resolved.Prune,
		Workers:       resolved.Workers,
	}
	if resolved.ErrorBehavior != "" {
		s.ErrorBehavior, _ = walker.ParseErrorBehavior(resolved.ErrorBehavior)
	}
	s.LogLevel, _ = logrus.ParseLevel(resolved.LogLevel)
	s.Format, _ = render.ParseFormat(resolved.Format)
	s.Mode, _ = classify.ParseMode(resolved.Mode)

	switch resolved.Color {
	case "always":
		s.Colored = true
	case "never":
		s.Colored = false
	default:
		s.Colored = !color.NoColor
	}
	if s.Format != render.FormatText {
		s.Colored = false
	}

	if s.Null, err = flags.GetBool("null"); err != nil {
		return nil, err
	}
	if s.Stats, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	return s, nil
}

func newLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}
