package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/resolve"
	"github.com/aretw0/arbor/pkg/session"
)

// Orchestrator loads parameter sets by name and turns them into a Session.
type Orchestrator struct {
	store  ports.ParamStore
	runLog ports.RunLog
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithRunLog sets where new sessions record their parameters and log lines.
// Without one, sessions are created but nothing is recorded.
func WithRunLog(log ports.RunLog) Option {
	return func(o *Orchestrator) {
		o.runLog = log
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger configures a logger for the Orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the time source for hooks and session stamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator creates an Orchestrator reading from store.
func NewOrchestrator(store ports.ParamStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) resolver() *resolve.Resolver {
	return resolve.NewResolver(o.store,
		resolve.WithHooks(o.hooks),
		resolve.WithLogger(o.logger),
	)
}

// Resolve loads names in order, expands their includes, merges them (later
// names win) and resolves cross-references in the merged tree.
// A name the store does not know is logged and contributes nothing.
func (o *Orchestrator) Resolve(ctx context.Context, names []string) (domain.Tree, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoParamSetNames
	}

	r := o.resolver()
	merged := domain.Tree{}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := o.store.Load(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrParamSetNotFound) {
				o.logger.Warn("parameter set not found", "name", name)
				if o.hooks.OnParamSetMissing != nil {
					o.hooks.OnParamSetMissing(ctx, o.setEvent(domain.EventParamSetMissing, name))
				}
				continue
			}
			return nil, fmt.Errorf("failed to load parameter set %q: %w", name, err)
		}

		set, err := domain.Parse(name, raw)
		if err != nil {
			return nil, err
		}
		if o.hooks.OnParamSetLoaded != nil {
			o.hooks.OnParamSetLoaded(ctx, o.setEvent(domain.EventParamSetLoaded, name))
		}

		tree, err := r.Includes(ctx, set)
		if err != nil {
			return nil, err
		}
		merged = resolve.Merge(merged, tree)
	}

	return r.References(ctx, merged)
}

// Initialize resolves names into a Session and records the run when a
// run log is configured.
func (o *Orchestrator) Initialize(ctx context.Context, names []string) (*session.Session, error) {
	start := o.now()

	tree, err := o.Resolve(ctx, names)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(o.logger),
		session.WithClock(o.now),
	}
	if o.runLog != nil {
		opts = append(opts, session.WithRunLog(o.runLog))
	}
	sess := session.New(tree, names, opts...)

	if o.runLog != nil {
		if err := sess.Record(ctx); err != nil {
			return nil, err
		}
	}

	o.logger.Info("session initialized", "run", sess.RunName(), "names", strings.Join(names, ":"))
	if o.hooks.OnSessionStarted != nil {
		o.hooks.OnSessionStarted(ctx, &domain.SessionEvent{
			EventBase: domain.EventBase{Timestamp: o.now(), Type: domain.EventSessionStarted},
			RunName:   sess.RunName(),
			Names:     sess.Names(),
			Duration:  o.now().Sub(start),
		})
	}
	return sess, nil
}

func (o *Orchestrator) setEvent(kind domain.EventType, name string) *domain.ParamSetEvent {
	return &domain.ParamSetEvent{
		EventBase: domain.EventBase{Timestamp: o.now(), Type: kind},
		Name:      name,
	}
}
