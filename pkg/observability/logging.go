package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks returns hooks that write every lifecycle event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnParamSetLoaded: func(ctx context.Context, e *domain.ParamSetEvent) {
			logger.Debug(string(e.Type), "name", e.Name)
		},
		OnParamSetMissing: func(ctx context.Context, e *domain.ParamSetEvent) {
			logger.Debug(string(e.Type), "name", e.Name)
		},
		OnInclude: func(ctx context.Context, e *domain.ParamSetEvent) {
			logger.Debug(string(e.Type), "include", e.Name, "from", e.From)
		},
		OnReference: func(ctx context.Context, e *domain.ReferenceEvent) {
			logger.Debug(string(e.Type), "location", e.Location, "path", e.Path)
		},
		OnSessionStarted: func(ctx context.Context, e *domain.SessionEvent) {
			logger.Info(string(e.Type), "run", e.RunName, "names", e.Names, "duration", e.Duration)
		},
	}
}
