package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/modelfile"
)

func envsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List the built-in environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range env.Names() {
				e, err := env.New(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s states=%-3d start=%-3d actions=%v\n",
					name, e.Model.NumStates(), e.Start, e.ActionNames)
			}
			return nil
		},
	}
}

func exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <env> <path>",
		Short: "Write a built-in environment as a JSON model file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env.New(args[0])
			if err != nil {
				return err
			}
			if err := modelfile.Save(args[1], e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", e.Name, args[1])
			return nil
		},
	}
}
