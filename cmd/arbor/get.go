package main

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get PATH NAME...",
	Short: "Print one value of the resolved parameters",
	Long:  `PATH is slash separated, e.g. "optim/lr".`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Get(cmd.Context(), args[1:], args[0])
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
