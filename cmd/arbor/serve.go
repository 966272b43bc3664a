package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor/internal/presentation/tui"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [NAME...]",
	Short: "Start the HTTP read API",
	Long: `Serves the parameter store over HTTP. When names are given, a run is
initialized and recorded first and exposed under /run.
Prometheus metrics are available at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		quiet, _ := cmd.Flags().GetBool("quiet")

		metrics := observability.NewMetrics(prometheus.NewRegistry())
		app, err := openApp(cmd, metrics.Hooks())
		if err != nil {
			return err
		}
		defer app.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithMetrics(metrics.Handler()),
			httpAdapter.WithLogger(app.Logger),
		}
		if len(args) > 0 {
			sess, err := app.Initialize(cmd.Context(), args)
			if err != nil {
				return err
			}
			opts = append(opts, httpAdapter.WithSession(sess))
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(app.Loader(), opts...),
		}

		out := cmd.OutOrStdout()
		if !quiet {
			tui.PrintBanner(out)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(out, "Starting arbor server on %s\n", srv.Addr)
			fmt.Fprintf(out, "Serving parameter sets from: %s\n", app.Options.Dir)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutting down...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintln(os.Stderr, tui.Warning(fmt.Sprintf("Graceful shutdown did not complete in %v: %v", 5*time.Second, err)))
				return srv.Close()
			}
			fmt.Fprintln(out, "arbor server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
