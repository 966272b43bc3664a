package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// ParamStore defines how the loader retrieves raw parameter sets by name.
// This allows the storage layer (Loam, plain files, Redis, Memory) to be decoupled.
type ParamStore interface {
	// Load retrieves the raw tree stored under name.
	// Returns domain.ErrParamSetNotFound if no such set exists.
	Load(ctx context.Context, name string) (map[string]any, error)

	// List returns the names of all parameter sets available in the store.
	List(ctx context.Context) ([]string, error)
}

// RunLog defines the per-run log storage.
type RunLog interface {
	// Start records the resolved parameters and the names used for a run.
	Start(ctx context.Context, run string, params domain.Tree, names []string) error

	// Append adds one already-stamped line to the run's log.
	Append(ctx context.Context, run string, line string) error
}

// RunReader is implemented by run logs that can read back what they recorded.
type RunReader interface {
	// Params returns the snapshot recorded by Start.
	Params(ctx context.Context, run string) (map[string]any, error)

	// Lines returns the appended log lines in order.
	Lines(ctx context.Context, run string) ([]string, error)

	// Runs returns the names of all recorded runs.
	Runs(ctx context.Context) ([]string, error)
}
