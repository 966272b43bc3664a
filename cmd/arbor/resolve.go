package main

import (
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME...",
	Short: "Print the resolved parameters for one or more sets",
	Long: `Loads the named parameter sets in order, merges them (later names win),
resolves @include and @ref: directives and prints the result.
With --record the run is also written to the run log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, _ := cmd.Flags().GetBool("record")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Resolve(cmd.Context(), args, record)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("record", false, "Record the run (parameters snapshot) in the run log")
}
