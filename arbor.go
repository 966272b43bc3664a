package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	fileAdapter "github.com/aretw0/arbor/pkg/adapters/file"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// DefaultRunsDir is where run logs are written when no RunLog is injected.
const DefaultRunsDir = "past_runs"

// ErrNoParamSetNames is returned when no parameter set names are given.
var ErrNoParamSetNames = domain.ErrNoParamSetNames

// Loader is the high-level entry point for the arbor library.
// It wraps the internal orchestrator and provides a simplified API for consumers.
type Loader struct {
	orchestrator *runtime.Orchestrator
	store        ports.ParamStore
	runLog       ports.RunLog
	runsDir      string
	noRunLog     bool
	middlewares  []middleware.Middleware
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
	Name         string
}

// Option defines a functional option for configuring the Loader.
type Option func(*Loader)

// WithStore injects a custom ParamStore, bypassing the default Loam initialization.
func WithStore(s ports.ParamStore) Option {
	return func(l *Loader) {
		l.store = s
	}
}

// WithRunLog injects a custom RunLog instead of the on-disk default.
func WithRunLog(r ports.RunLog) Option {
	return func(l *Loader) {
		l.runLog = r
	}
}

// WithRunsDir sets the directory of the default on-disk RunLog.
func WithRunsDir(dir string) Option {
	return func(l *Loader) {
		l.runsDir = dir
	}
}

// WithoutRunLog disables run recording; sessions are still created.
func WithoutRunLog() Option {
	return func(l *Loader) {
		l.noRunLog = true
	}
}

// WithRunLogMiddleware wraps whichever RunLog the Loader ends up with.
func WithRunLogMiddleware(mws ...middleware.Middleware) Option {
	return func(l *Loader) {
		l.middlewares = append(l.middlewares, mws...)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Loader) {
		l.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithClock overrides the time source used for stamps and events.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// New initializes a Loader reading parameter sets from dir.
// By default, it uses a Loam repository at the given path and records runs
// under DefaultRunsDir. If WithStore is provided, dir can be empty.
func New(dir string, opts ...Option) (*Loader, error) {
	l := &Loader{runsDir: DefaultRunsDir, now: time.Now}

	// Apply Options first to check if a store is provided
	for _, opt := range opts {
		opt(l)
	}

	if l.store == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom store is provided")
		}
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		l.Name = filepath.Base(absPath)

		store, err := loamAdapter.New(absPath)
		if err != nil {
			return nil, err
		}
		l.store = store
	} else if dir != "" {
		l.Name = filepath.Base(dir)
	}

	if l.runLog == nil && !l.noRunLog {
		l.runLog = fileAdapter.NewRunLog(l.runsDir)
	}
	if l.noRunLog {
		l.runLog = nil
	}
	if l.runLog != nil && len(l.middlewares) > 0 {
		l.runLog = middleware.Chain(l.runLog, l.middlewares...)
	}

	if l.logger == nil {
		l.logger = logging.NewNop()
	}
	if l.Name != "" {
		l.logger = l.logger.With("store", l.Name)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLifecycleHooks(l.hooks),
		runtime.WithLogger(l.logger),
		runtime.WithClock(l.now),
	}
	if l.runLog != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRunLog(l.runLog))
	}
	l.orchestrator = runtime.NewOrchestrator(l.store, runtimeOpts...)

	return l, nil
}

// Initialize loads names in order and returns the run Session.
func (l *Loader) Initialize(ctx context.Context, names ...string) (*session.Session, error) {
	return l.orchestrator.Initialize(ctx, names)
}

// Resolve returns the merged and fully resolved tree for names without
// creating a session or recording a run.
func (l *Loader) Resolve(ctx context.Context, names ...string) (domain.Tree, error) {
	return l.orchestrator.Resolve(ctx, names)
}

// List returns the names of every parameter set in the store.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	return l.store.List(ctx)
}

// Store returns the underlying ParamStore.
func (l *Loader) Store() ports.ParamStore {
	return l.store
}

// RunLog returns the RunLog sessions record to, or nil when disabled.
func (l *Loader) RunLog() ports.RunLog {
	return l.runLog
}

// FromArgs returns the parameter set names passed on the command line,
// i.e. everything after the program name.
func FromArgs(args []string) ([]string, error) {
	if len(args) < 2 {
		return nil, ErrNoParamSetNames
	}
	return append([]string(nil), args[1:]...), nil
}

// Load is a shortcut for New(dir) followed by Initialize.
func Load(ctx context.Context, dir string, names ...string) (*session.Session, error) {
	l, err := New(dir)
	if err != nil {
		return nil, err
	}
	return l.Initialize(ctx, names...)
}
