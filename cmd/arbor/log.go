package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log RUN MESSAGE...",
	Short: "Append a timestamped line to a run's log",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Log(cmd.Context(), args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
