package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/CodeStranger-Fred/policyeval/mdp"
)

// Config holds all evaluation settings
type Config struct {
	// Model source: a built-in environment or a JSON model file
	Env       string `mapstructure:"env"`
	ModelFile string `mapstructure:"model_file"`

	// Policy spec: "random", "greedy", or one action per state separated by commas
	Policy string `mapstructure:"policy"`

	// Evaluation
	Gamma     float64 `mapstructure:"gamma"`
	Epsilon   float64 `mapstructure:"epsilon"`
	MaxSweeps int     `mapstructure:"max_sweeps"`
	Workers   int     `mapstructure:"workers"`
	Seed      uint64  `mapstructure:"seed"`

	// Output
	LogLevel  string `mapstructure:"log_level"`
	ChartPath string `mapstructure:"chart_path"`
	NoColor   bool   `mapstructure:"no_color"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		Env:       "fl",
		Policy:    "random",
		Gamma:     mdp.DefaultGamma,
		Epsilon:   mdp.DefaultEpsilon,
		MaxSweeps: mdp.DefaultMaxSweeps,
		Workers:   1,
		Seed:      0, // clock seeded
		LogLevel:  "info",
	}
}

// Load overlays values found in v (flags, POLICYEVAL_* variables, config file) onto the defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Env == "" && c.ModelFile == "" {
		return errors.New("env or model_file is required")
	}
	if c.Policy == "" {
		return errors.New("policy is required")
	}
	if math.IsNaN(c.Gamma) || c.Gamma < 0 || c.Gamma >= 1 {
		return fmt.Errorf("gamma must be in [0, 1), got %v", c.Gamma)
	}
	if math.IsNaN(c.Epsilon) || c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", c.Epsilon)
	}
	if c.MaxSweeps < 1 {
		return errors.New("max_sweeps must be positive")
	}
	if c.Workers < 1 {
		return errors.New("workers must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// Options turns the evaluation settings into evaluator options.
func (c *Config) Options(logger zerolog.Logger) []mdp.Option {
	return []mdp.Option{
		mdp.WithGamma(c.Gamma),
		mdp.WithEpsilon(c.Epsilon),
		mdp.WithMaxSweeps(c.MaxSweeps),
		mdp.WithWorkers(c.Workers),
		mdp.WithLogger(logger),
	}
}
