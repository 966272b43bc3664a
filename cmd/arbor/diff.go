package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compare two resolved parameter trees",
	Long: `OLD and NEW are colon separated lists of parameter set names,
e.g. "arbor diff base base:lr_sweep".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Diff(cmd.Context(), splitNames(args[0]), splitNames(args[1]))
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ":") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
