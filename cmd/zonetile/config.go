package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/zonetile/internal/config"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file, including a trial build of every layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := g.resolveConfigPath()
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			if !res.Exists {
				fmt.Fprintf(cmd.OutOrStdout(), "config: %s not found, defaults ok\n", path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
			return nil
		},
	}

	var defaults bool
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				path, err := g.resolveConfigPath()
				if err != nil {
					return err
				}
				res, err := config.LoadFromPath(path)
				if err != nil {
					return err
				}
				cfg = res.Config
			}
			if g.jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	printCmd.Flags().BoolVar(&defaults, "defaults", false, "print built-in defaults (no file)")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	explain := &cobra.Command{
		Use:   "explain <yaml.path>",
		Short: "Show where a config value comes from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.resolveConfigPath()
			if err != nil {
				return err
			}
			res, err := config.LoadFromPath(p)
			if err != nil {
				return err
			}
			src := res.Explain(args[0])
			out := cmd.OutOrStdout()
			if src.Kind == config.SourceFile {
				fmt.Fprintf(out, "%s: %s:%d:%d\n", args[0], src.File, src.Line, src.Column)
				return nil
			}
			fmt.Fprintf(out, "%s: %s\n", args[0], src.Kind)
			return nil
		},
	}

	cmd.AddCommand(validate, printCmd, path, explain)
	return cmd
}
