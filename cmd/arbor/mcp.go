package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [NAME...]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the parameter store as an MCP Server so AI agents can list,
resolve and read parameter sets. When names are given, a run is initialized
and its parameters and log become available as well.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []mcp.Option{mcp.WithLogger(app.Logger)}
		if len(args) > 0 {
			sess, err := app.Initialize(cmd.Context(), args)
			if err != nil {
				return err
			}
			opts = append(opts, mcp.WithSession(sess))
		}
		srv := mcp.NewServer(app.Loader(), opts...)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			app.Logger.Info("Starting arbor MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			app.Logger.Info("Starting arbor MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return err
			}
			app.Logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use (stdio, sse)")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for SSE transport")
}
