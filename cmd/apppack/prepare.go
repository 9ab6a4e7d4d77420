package main

import (
	"github.com/spf13/cobra"
)

func prepareCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare [platform...]",
		Short: "Apply the descriptor to native projects",
		Long: `Apply the app descriptor to each platform project.

Without arguments every installed platform under the platforms directory
is prepared. A failing platform does not stop the others.

Examples:
  apppack prepare
  apppack prepare windows
  apppack prepare -C ./myapp ios`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			return s.runner.Prepare(cmd.Context(), s.project, args)
		},
	}
}

func cleanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [platform...]",
		Short: "Remove copied resources and plugin capabilities",
		Long: `Delete exactly the resources that prepare copies, and remove the
capabilities contributed by the descriptor and plugins.

Examples:
  apppack clean
  apppack clean ios windows`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			return s.runner.Clean(cmd.Context(), s.project, args)
		},
	}
}
