package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [NAME...]",
	Short: "Verify that parameter sets resolve",
	Long: `Resolves each named parameter set on its own, or every set in the store
when none are named, and reports missing sets, broken @include chains and
unresolvable @ref: markers. Exits non-zero if any set fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Check(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
