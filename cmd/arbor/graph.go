package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph NAME...",
	Short: "Print the @include hierarchy of parameter sets as a Mermaid flowchart",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := graph.NewIncludeGraph()
		app, err := openApp(cmd, g.Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.Loader().Resolve(cmd.Context(), args...); err != nil {
			return err
		}

		out := graph.GenerateMermaid(g)
		if fenced, _ := cmd.Flags().GetBool("markdown"); fenced {
			out = "```mermaid\n" + out + "```\n"
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	graphCmd.Flags().Bool("markdown", false, "Wrap the flowchart in a mermaid code fence")
	rootCmd.AddCommand(graphCmd)
}
