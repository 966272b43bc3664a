package cli

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/persistence/middleware"
)

// Store backends selectable with --store.
const (
	StoreLoam  = "loam"
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Output formats selectable with --format.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatPretty = "pretty"
	FormatAuto   = "auto"
)

// Options holds the global CLI configuration.
type Options struct {
	Dir       string // parameter-set directory
	RunsDir   string // run log directory for file-backed stores
	Store     string // loam, file or redis
	RedisAddr string
	RedisDB   int
	LogLevel  string
	Format    string
	Mask      []string // key patterns masked in recorded snapshots
}

// DefaultOptions mirrors the flag defaults of cmd/arbor.
func DefaultOptions() Options {
	return Options{
		Dir:       "run_params",
		RunsDir:   "past_runs",
		Store:     StoreLoam,
		RedisAddr: "localhost:6379",
		LogLevel:  "warn",
		Format:    FormatAuto,
	}
}

// Validate rejects unknown store or format values and bad mask patterns.
func (o Options) Validate() error {
	switch o.Store {
	case StoreLoam, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (expected loam, file or redis)", o.Store)
	}
	switch o.Format {
	case FormatJSON, FormatYAML, FormatPretty, FormatAuto, "":
	default:
		return fmt.Errorf("unknown format %q (expected json, yaml, pretty or auto)", o.Format)
	}
	if err := middleware.CompilePatterns(o.Mask); err != nil {
		return fmt.Errorf("invalid mask pattern: %w", err)
	}
	return nil
}
