package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor"
	fileAdapter "github.com/aretw0/arbor/pkg/adapters/file"
	redisAdapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

// backend bundles the loader with the run reader and cleanup of the chosen store.
type backend struct {
	loader *arbor.Loader
	runs   ports.RunReader
	close  func() error
}

// newBackend initializes an arbor.Loader following the CLI conventions:
// parameter sets come from --dir (or redis), run logs go to --runs (or redis).
func newBackend(opts Options, logger *slog.Logger, hooks domain.LifecycleHooks, extra ...arbor.Option) (*backend, error) {
	loaderOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithLifecycleHooks(hooks),
	}
	if len(opts.Mask) > 0 {
		loaderOpts = append(loaderOpts, arbor.WithRunLogMiddleware(middleware.NewPIIMiddleware(opts.Mask)))
	}
	b := &backend{close: func() error { return nil }}

	switch opts.Store {
	case StoreRedis:
		store := redisAdapter.New(opts.RedisAddr, "", opts.RedisDB)
		loaderOpts = append(loaderOpts, arbor.WithStore(store), arbor.WithRunLog(store))
		b.runs = store
		b.close = store.Close
	case StoreFile:
		runLog := fileAdapter.NewRunLog(opts.RunsDir)
		loaderOpts = append(loaderOpts, arbor.WithStore(fileAdapter.New(opts.Dir)), arbor.WithRunLog(runLog))
		b.runs = runLog
	default:
		runLog := fileAdapter.NewRunLog(opts.RunsDir)
		loaderOpts = append(loaderOpts, arbor.WithRunLog(runLog))
		b.runs = runLog
	}

	loader, err := arbor.New(opts.Dir, append(loaderOpts, extra...)...)
	if err != nil {
		_ = b.close()
		return nil, fmt.Errorf("error initializing loader: %w", err)
	}
	b.loader = loader
	return b, nil
}
