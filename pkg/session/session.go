package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/view"
)

// StampLayout is the time layout used by Stamp and run log lines.
const StampLayout = "01 02 2006 - 15:04:05"

// ErrNoRunLog is returned by Log and Record when the session has no run log.
var ErrNoRunLog = errors.New("session has no run log")

// Session is the read-only result of loading parameter sets for one run.
type Session struct {
	params  domain.Tree
	view    *view.Record
	runName string
	names   []string

	runLog ports.RunLog
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Session.
type Option func(*Session)

// WithRunLog sets where Record and Log write to.
func WithRunLog(log ports.RunLog) Option {
	return func(s *Session) {
		s.runLog = log
	}
}

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides the time source used by Stamp.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithRunName overrides the derived run name.
func WithRunName(name string) Option {
	return func(s *Session) {
		if name = SanitizeRunName(name); name != "" {
			s.runName = name
		}
	}
}

// New creates a Session over a resolved tree. The session owns params;
// callers must not modify it afterwards.
func New(params domain.Tree, names []string, opts ...Option) *Session {
	if params == nil {
		params = domain.Tree{}
	}
	s := &Session{
		params:  params,
		view:    view.Build(params),
		runName: DeriveRunName(params),
		names:   slices.Clone(names),
		logger:  logging.NewNop(), // Default to no-op
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns a deep copy of the resolved parameter tree.
func (s *Session) Params() domain.Tree {
	return s.params.Clone()
}

// View returns the structured view of the parameters.
func (s *Session) View() *view.Record {
	return s.view
}

// RunName returns the sanitized run name.
func (s *Session) RunName() string {
	return s.runName
}

// Names returns the parameter-set names the session was loaded from.
func (s *Session) Names() []string {
	return slices.Clone(s.names)
}

// Lookup returns a copy of the value at path.
func (s *Session) Lookup(path ...string) (any, bool) {
	var cur any = s.params
	for _, seg := range path {
		tree, ok := cur.(domain.Tree)
		if !ok {
			return nil, false
		}
		if cur, ok = tree[seg]; !ok {
			return nil, false
		}
	}
	return domain.CloneValue(cur), true
}

// Get is Lookup without the presence flag. A missing path is logged and
// yields nil so experiment code can keep running.
func (s *Session) Get(path ...string) any {
	v, ok := s.Lookup(path...)
	if !ok {
		s.logger.Warn("parameter not found", "path", strings.Join(path, "/"), "run", s.runName)
		return nil
	}
	return v
}

// Stamp returns the current time formatted with StampLayout.
func (s *Session) Stamp() string {
	return s.now().Format(StampLayout)
}

// Snapshot returns the document recorded for this run.
func (s *Session) Snapshot() map[string]any {
	return domain.Snapshot(s.params, s.names)
}

// Record writes the parameter snapshot to the run log.
func (s *Session) Record(ctx context.Context) error {
	if s.runLog == nil {
		return ErrNoRunLog
	}
	if err := s.runLog.Start(ctx, s.runName, s.params, s.names); err != nil {
		return fmt.Errorf("failed to record run %s: %w", s.runName, err)
	}
	s.logger.Debug("run recorded", "run", s.runName, "names", strings.Join(s.names, ":"))
	return nil
}

// Log appends a timestamped line to the run log. The line goes through
// SanitizeLine first.
func (s *Session) Log(ctx context.Context, line string) error {
	if s.runLog == nil {
		return ErrNoRunLog
	}
	line, err := SanitizeLine(line)
	if err != nil {
		return err
	}
	if err := s.runLog.Append(ctx, s.runName, s.Stamp()+" "+line); err != nil {
		return fmt.Errorf("failed to append to run %s: %w", s.runName, err)
	}
	return nil
}
