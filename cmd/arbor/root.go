package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor loads hierarchical experiment parameters",
	Long: `Arbor merges named parameter sets, follows their @include inheritance,
resolves @ref: cross-references and records every run's parameters and log.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := cli.DefaultOptions()

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", defaults.Dir, "Directory containing the parameter sets")
	flags.String("runs", defaults.RunsDir, "Directory receiving run logs")
	flags.String("store", defaults.Store, "Parameter store: loam, file or redis")
	flags.String("redis-addr", defaults.RedisAddr, "Redis address when --store=redis")
	flags.Int("redis-db", defaults.RedisDB, "Redis database when --store=redis")
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error or off")
	flags.StringP("format", "o", defaults.Format, "Output format: auto, json, yaml or pretty")
	flags.StringSlice("mask", nil, "Key patterns (regexp) whose values are masked in recorded runs")
}

func optionsFromFlags(cmd *cobra.Command) cli.Options {
	opts := cli.DefaultOptions()
	flags := cmd.Flags()
	opts.Dir, _ = flags.GetString("dir")
	opts.RunsDir, _ = flags.GetString("runs")
	opts.Store, _ = flags.GetString("store")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Format, _ = flags.GetString("format")
	opts.Mask, _ = flags.GetStringSlice("mask")
	return opts
}

// openApp builds the CLI application from the global flags. Extra hooks are
// combined with the logging hooks every command gets.
func openApp(cmd *cobra.Command, extra ...domain.LifecycleHooks) (*cli.App, error) {
	opts := optionsFromFlags(cmd)
	logger, err := logging.FromFlag(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	hooks := observability.LoggingHooks(logger)
	for _, h := range extra {
		hooks = hooks.Combine(h)
	}
	return cli.NewApp(opts, cmd.OutOrStdout(), logger, hooks)
}
