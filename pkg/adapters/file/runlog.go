package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

const (
	paramsFile = "params.json"
	logFile    = "log.txt"
)

// RunLog implements ports.RunLog using one directory per run.
// Each run gets <BasePath>/<run>/params.json and an append-only <BasePath>/<run>/log.txt.
type RunLog struct {
	BasePath string

	mu sync.Mutex
}

// NewRunLog creates a new RunLog with the given base path.
// If basePath is empty, it defaults to "past_runs".
func NewRunLog(basePath string) *RunLog {
	if basePath == "" {
		basePath = "past_runs"
	}
	return &RunLog{BasePath: basePath}
}

// Dir returns the directory holding a run's files.
func (l *RunLog) Dir(run string) string {
	return filepath.Join(l.BasePath, run)
}

// Start persists the parameter snapshot atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (l *RunLog) Start(ctx context.Context, run string, params domain.Tree, names []string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}

	dir := l.Dir(run)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure run directory: %w", err)
	}

	snapshot := domain.Snapshot(params, names)

	data, err := json.MarshalIndent(snapshot, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	return writeAtomic(dir, paramsFile, data)
}

// Append adds a line to log.txt, creating the run directory on demand.
func (l *RunLog) Append(ctx context.Context, run string, line string) error {
	if run == "" {
		return fmt.Errorf("run name cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := l.Dir(run)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure run directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to run log: %w", err)
	}
	return nil
}

// Params reads back the snapshot written by Start.
func (l *RunLog) Params(ctx context.Context, run string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir(run), paramsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read run parameters: %w", err)
	}
	return Decode(".json", data)
}

// Lines reads back log.txt.
func (l *RunLog) Lines(ctx context.Context, run string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir(run), logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// Runs returns the runs that have a directory under BasePath.
func (l *RunLog) Runs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry.Name())
		}
	}
	return runs, nil
}

func writeAtomic(dir, name string, data []byte) error {
	destPath := filepath.Join(dir, name)

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing %s for overwrite: %w", name, err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", name, err)
	}
	return nil
}
