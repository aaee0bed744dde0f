package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/mdp"
	"github.com/CodeStranger-Fred/policyeval/render"
)

func simulateCommand(v *viper.Viper) *cobra.Command {
	var steps, runs int

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Walk the environment with a policy, sampling one outcome per step",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return fmt.Errorf("%w: --steps must not be negative, got %d", mdp.ErrInvalidParameter, steps)
			}
			cfg, e, err := setup(v)
			if err != nil {
				return err
			}
			evaluator, err := mdp.NewEvaluator(cfg.Options(log.Logger)...)
			if err != nil {
				return err
			}

			src := source(cfg.Seed)
			policy, err := parsePolicy(cfg.Policy, e, evaluator, src, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sim := env.NewSimulator(e, src)
			printer := render.NewPrinter(out, e, !cfg.NoColor)
			printer.State(sim.Reset())

			var total float64
			for step := 1; step <= steps; step++ {
				s0 := sim.Current()
				if e.Model.IsTerminal(s0) {
					break
				}
				a, ok := policy.Act(s0)
				if !ok {
					return fmt.Errorf("%w: no action for state %d", mdp.ErrInvalidPolicy, s0)
				}
				t, err := sim.StepWithChoice(a)
				if err != nil {
					return err
				}
				total += t.Reward

				fmt.Fprintf(out, "step %d: %d -[%s]-> %d reward %.2f\n", step, s0, e.ActionName(a), t.NextState, t.Reward)
				printer.State(sim.Current())
			}
			fmt.Fprintf(out, "total reward: %.2f\n", total)

			if runs > 1 {
				avg, err := env.AverageReturn(e, policy, cfg.Gamma, runs, steps, src)
				if err != nil {
					return err
				}
				log.Info().Int("runs", runs).Float64("average", avg).Msg("policy runs finished")
				fmt.Fprintf(out, "average discounted return over %d runs: %.4f\n", runs, avg)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 100, "Maximum number of steps per run")
	cmd.Flags().IntVar(&runs, "runs", 1, "Number of runs to average the discounted return over")
	return cmd
}
