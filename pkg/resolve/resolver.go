package resolve

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Resolver expands includes against a ParamStore and resolves references.
type Resolver struct {
	store  ports.ParamStore
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Resolver) {
		r.hooks = hooks
	}
}

// WithLogger configures a logger for the Resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver reading included sets from store.
func NewResolver(store ports.ParamStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
