package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// RunLog implements ports.RunLog and ports.RunReader in memory.
type RunLog struct {
	mu     sync.Mutex
	params map[string]map[string]any
	lines  map[string][]string
}

// NewRunLog creates an empty in-memory run log.
func NewRunLog() *RunLog {
	return &RunLog{
		params: make(map[string]map[string]any),
		lines:  make(map[string][]string),
	}
}

// Start records a snapshot of params and the names used.
func (l *RunLog) Start(ctx context.Context, run string, params domain.Tree, names []string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	snapshot := domain.Snapshot(params, names)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.params[run] = snapshot
	return nil
}

// Append adds a line to the run's log.
func (l *RunLog) Append(ctx context.Context, run string, line string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[run] = append(l.lines[run], line)
	return nil
}

// Params returns the recorded snapshot.
func (l *RunLog) Params(ctx context.Context, run string) (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.params[run]
	if !ok {
		return nil, fmt.Errorf("run %q has no recorded parameters", run)
	}
	return copyMap(p), nil
}

// Lines returns the recorded log lines.
func (l *RunLog) Lines(ctx context.Context, run string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines[run]...), nil
}

// Runs returns every run that was started or logged to.
func (l *RunLog) Runs(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seen := make(map[string]bool, len(l.params))
	runs := make([]string, 0, len(l.params))
	for run := range l.params {
		seen[run] = true
		runs = append(runs, run)
	}
	for run := range l.lines {
		if !seen[run] {
			runs = append(runs, run)
		}
	}
	sort.Strings(runs)
	return runs, nil
}
