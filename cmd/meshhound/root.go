package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(app *application) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meshhound",
		Short:         "Detect 3D model files in observed web traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&app.configFlag, "config", "c", "", "Configuration file path (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "Disable coloured console logs")

	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newCrawlCommand(app))
	rootCmd.AddCommand(newBrowseCommand(app))
	rootCmd.AddCommand(newProbeCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newClearCommand(app))
	rootCmd.AddCommand(newExportCommand(app))

	return rootCmd
}
