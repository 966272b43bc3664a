package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventParamSetLoaded    EventType = "param_set_loaded"
	EventParamSetMissing   EventType = "param_set_missing"
	EventIncludeResolved   EventType = "include_resolved"
	EventReferenceResolved EventType = "reference_resolved"
	EventSessionStarted    EventType = "session_started"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ParamSetEvent is emitted for every set loaded directly or through @include.
type ParamSetEvent struct {
	EventBase
	Name string `json:"name"`
	From string `json:"from,omitempty"` // including set, empty for top-level names
}

// ReferenceEvent is emitted when a cross-reference is replaced by its target.
type ReferenceEvent struct {
	EventBase
	Location string `json:"location"`
	Path     string `json:"path"`
}

// SessionEvent is emitted once a session has been initialized.
type SessionEvent struct {
	EventBase
	RunName  string        `json:"run_name"`
	Names    []string      `json:"names"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for loader observability.
type LifecycleHooks struct {
	OnParamSetLoaded  func(context.Context, *ParamSetEvent)
	OnParamSetMissing func(context.Context, *ParamSetEvent)
	OnInclude         func(context.Context, *ParamSetEvent)
	OnReference       func(context.Context, *ReferenceEvent)
	OnSessionStarted  func(context.Context, *SessionEvent)
}

// Combine returns hooks that invoke h first and then other.
func (h LifecycleHooks) Combine(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnParamSetLoaded:  chain(h.OnParamSetLoaded, other.OnParamSetLoaded),
		OnParamSetMissing: chain(h.OnParamSetMissing, other.OnParamSetMissing),
		OnInclude:         chain(h.OnInclude, other.OnInclude),
		OnReference:       chain(h.OnReference, other.OnReference),
		OnSessionStarted:  chain(h.OnSessionStarted, other.OnSessionStarted),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
