package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/rand"

	"github.com/CodeStranger-Fred/policyeval/chart"
	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/mdp"
	"github.com/CodeStranger-Fred/policyeval/render"
)

func evaluateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Compute the state values of a policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, e, err := setup(v)
			if err != nil {
				return err
			}

			evaluator, err := mdp.NewEvaluator(cfg.Options(log.Logger)...)
			if err != nil {
				return err
			}

			var series []chart.Series
			policy, err := parsePolicy(cfg.Policy, e, evaluator, source(cfg.Seed), func(name string, r *mdp.Result) {
				series = append(series, chart.Series{Name: name, Deltas: r.Deltas})
			})
			if err != nil {
				return err
			}

			result, err := evaluator.Evaluate(e.Model, policy)
			if err != nil {
				return fmt.Errorf("failed to evaluate %s policy on %s: %w", cfg.Policy, e.Name, err)
			}
			series = append(series, chart.Series{Name: cfg.Policy, Deltas: result.Deltas})
			log.Info().Str("env", e.Name).Str("policy", cfg.Policy).Int("sweeps", result.Sweeps).Msg("policy evaluated")

			out := cmd.OutOrStdout()
			printer := render.NewPrinter(out, e, !cfg.NoColor)
			fmt.Fprintln(out, "policy:")
			printer.Policy(policy)
			fmt.Fprintln(out, "values:")
			printer.Values(result.Values)
			fmt.Fprintf(out, "sweeps: %d\n", result.Sweeps)
			fmt.Fprintf(out, "start value: %.6f\n", result.Values[e.Start])

			if cfg.ChartPath != "" {
				if err := chart.WriteFile(cfg.ChartPath, e.Name, series...); err != nil {
					return err
				}
				log.Info().Str("path", cfg.ChartPath).Msg("convergence chart written")
			}
			return nil
		},
	}
}

// parsePolicy turns a policy spec into a policy for e. "greedy" evaluates a random policy first
// and acts greedily on its values; that intermediate run is reported through observe.
func parsePolicy(spec string, e *env.Environment, evaluator *mdp.Evaluator, src rand.Source, observe func(string, *mdp.Result)) (mdp.Policy, error) {
	switch spec {
	case "random":
		return mdp.NewRandomPolicy(e.Model, src), nil

	case "greedy":
		random := mdp.NewRandomPolicy(e.Model, src)
		result, err := evaluator.Evaluate(e.Model, random)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate random policy: %w", err)
		}
		if observe != nil {
			observe("random", result)
		}
		return mdp.GreedyPolicy(e.Model, result.Values, evaluator.Gamma())
	}

	fields := strings.Split(spec, ",")
	if len(fields) != e.Model.NumStates() {
		return nil, fmt.Errorf("%w: %d actions given for %d states", mdp.ErrInvalidPolicy, len(fields), e.Model.NumStates())
	}

	policy := mdp.TabularPolicy{}
	for s, field := range fields {
		a, err := e.ParseAction(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("%w: state %d: %v", mdp.ErrInvalidPolicy, s, err)
		}
		policy[mdp.State(s)] = a
	}
	return policy, nil
}
