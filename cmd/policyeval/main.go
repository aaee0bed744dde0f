package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/rand"

	"github.com/CodeStranger-Fred/policyeval/config"
	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/modelfile"
)

func rootCommand() *cobra.Command {
	v := viper.New()
	def := config.Default()

	root := &cobra.Command{
		Use:   "policyeval",
		Short: "Evaluate fixed policies on finite MDPs",
		Long: `policyeval computes the state values of a fixed policy on a finite MDP by
iterative policy evaluation. Models come from the built-in environments or from
JSON model files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (yaml, json or toml)")
	flags.String("env", def.Env, "Built-in environment to evaluate on")
	flags.String("model-file", def.ModelFile, "JSON model file, overrides --env")
	flags.String("policy", def.Policy, "random, greedy, or one action per state separated by commas")
	flags.Float64("gamma", def.Gamma, "Discount factor in [0, 1)")
	flags.Float64("epsilon", def.Epsilon, "Convergence tolerance")
	flags.Int("max-sweeps", def.MaxSweeps, "Sweep ceiling before giving up")
	flags.Int("workers", def.Workers, "Goroutines per sweep")
	flags.Uint64("seed", def.Seed, "Random seed (0 seeds from the clock)")
	flags.String("log-level", def.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.String("chart", def.ChartPath, "Write a convergence chart to this HTML file")
	flags.Bool("no-color", def.NoColor, "Disable colored output")

	// Bind flags to viper for environment variable support
	for key, name := range map[string]string{
		"config":     "config",
		"env":        "env",
		"model_file": "model-file",
		"policy":     "policy",
		"gamma":      "gamma",
		"epsilon":    "epsilon",
		"max_sweeps": "max-sweeps",
		"workers":    "workers",
		"seed":       "seed",
		"log_level":  "log-level",
		"chart_path": "chart",
		"no_color":   "no-color",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	v.SetEnvPrefix("POLICYEVAL")
	v.AutomaticEnv()

	root.AddCommand(evaluateCommand(v))
	root.AddCommand(simulateCommand(v))
	root.AddCommand(envsCommand())
	root.AddCommand(exportCommand())
	return root
}

// setup loads the config, configures the global logger and loads the model source.
func setup(v *viper.Viper) (*config.Config, *env.Environment, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}).
		Level(level).With().Timestamp().Logger()

	var e *env.Environment
	if cfg.ModelFile != "" {
		e, err = modelfile.Load(cfg.ModelFile)
	} else {
		e, err = env.New(cfg.Env)
	}
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Str("env", e.Name).Int("states", e.Model.NumStates()).Msg("model loaded")
	return cfg, e, nil
}

func source(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
