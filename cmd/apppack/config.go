package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
)

func configCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the app descriptor",
	}
	cmd.AddCommand(configShowCmd(opts))
	return cmd
}

func configShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the normalized descriptor as YAML",
		Long: `Parse the descriptor (config.xml or app.yaml) and print the normalized
result as YAML. The output is itself a valid app.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := opts.settings()
			cfg, err := appconfig.Read(settings.ConfigFile)
			if err != nil {
				return err
			}
			out, err := appconfig.MarshalYAML(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
