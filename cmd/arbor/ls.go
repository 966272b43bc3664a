package main

import (
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List parameter sets (or recorded runs with --runs-only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runsOnly, _ := cmd.Flags().GetBool("runs-only")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if runsOnly {
			return app.Runs(cmd.Context())
		}
		return app.List(cmd.Context())
	},
}

var showCmd = &cobra.Command{
	Use:   "show RUN",
	Short: "Print the recorded parameters and log of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Show(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	lsCmd.Flags().Bool("runs-only", false, "List recorded runs instead of parameter sets")
}
