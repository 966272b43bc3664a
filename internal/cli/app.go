package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// App runs CLI commands against one configured backend.
type App struct {
	Options Options
	Out     io.Writer
	Logger  *slog.Logger
	Now     func() time.Time

	loader *arbor.Loader
	runs   ports.RunReader
	close  func() error
}

// NewApp opens the store selected by opts.
func NewApp(opts Options, out io.Writer, logger *slog.Logger, hooks domain.LifecycleHooks) (*App, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	app := &App{Options: opts, Out: out, Logger: logger, Now: time.Now}
	b, err := newBackend(opts, logger, hooks, arbor.WithClock(app.now))
	if err != nil {
		return nil, err
	}
	app.loader, app.runs, app.close = b.loader, b.runs, b.close
	return app, nil
}

func (a *App) now() time.Time { return a.Now() }

// Loader returns the underlying loader.
func (a *App) Loader() *arbor.Loader { return a.loader }

// Close releases the backend.
func (a *App) Close() error { return a.close() }

// Resolve prints the resolved tree for names. With record set, a session is
// initialized so the run is written to the run log, and the run name is reported.
func (a *App) Resolve(ctx context.Context, names []string, record bool) error {
	if !record {
		tree, err := a.loader.Resolve(ctx, names...)
		if err != nil {
			return err
		}
		return encode(a.Out, tree.Plain(), a.Options.Format, strings.Join(names, ":"))
	}

	sess, err := a.loader.Initialize(ctx, names...)
	if err != nil {
		return err
	}
	if err := encode(a.Out, sess.Params().Plain(), a.Options.Format, sess.RunName()); err != nil {
		return err
	}
	a.Logger.Info("run recorded", "run", sess.RunName())
	return nil
}

// Initialize starts and records a run session for names.
func (a *App) Initialize(ctx context.Context, names []string) (*session.Session, error) {
	return a.loader.Initialize(ctx, names...)
}

// Get prints the value at a slash separated path of the resolved tree.
func (a *App) Get(ctx context.Context, names []string, path string) error {
	tree, err := a.loader.Resolve(ctx, names...)
	if err != nil {
		return err
	}
	sess := session.New(tree, names, session.WithLogger(a.Logger))

	segments := splitPath(path)
	v, ok := sess.Lookup(segments...)
	if !ok {
		return fmt.Errorf("parameter not found: %s", strings.Join(segments, "/"))
	}
	if t, isTree := v.(domain.Tree); isTree {
		v = t.Plain()
	}
	return encode(a.Out, v, a.Options.Format, path)
}

// List prints the names of all parameter sets.
func (a *App) List(ctx context.Context) error {
	names, err := a.loader.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(a.Out, n)
	}
	return nil
}

// Runs prints the names of all recorded runs.
func (a *App) Runs(ctx context.Context) error {
	runs, err := a.runs.Runs(ctx)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintln(a.Out, r)
	}
	return nil
}

// Show prints the recorded snapshot and log lines of run.
func (a *App) Show(ctx context.Context, run string) error {
	params, err := a.runs.Params(ctx, run)
	if err != nil {
		return err
	}
	lines, err := a.runs.Lines(ctx, run)
	if err != nil {
		return err
	}
	if err := encode(a.Out, params, a.Options.Format, run); err != nil {
		return err
	}
	if len(lines) > 0 {
		fmt.Fprintln(a.Out, tui.Heading("log"))
		for _, l := range lines {
			fmt.Fprintln(a.Out, l)
		}
	}
	return nil
}

// Log appends a timestamped line to an existing or new run.
func (a *App) Log(ctx context.Context, run, line string) error {
	run = session.SanitizeRunName(run)
	if run == "" {
		return fmt.Errorf("invalid run name")
	}
	log := a.loader.RunLog()
	if log == nil {
		return session.ErrNoRunLog
	}
	line, err := session.SanitizeLine(line)
	if err != nil {
		return err
	}
	return log.Append(ctx, run, a.Now().Format(session.StampLayout)+" "+line)
}

// Check resolves every named set (or every stored set) on its own and
// prints one status line per set. The returned error lists the failures.
func (a *App) Check(ctx context.Context, names []string) error {
	checked, err := validator.Validate(ctx, a.loader, names)
	failed := make(map[string]bool)
	var verr *validator.Error
	if errors.As(err, &verr) {
		for _, f := range verr.Failures {
			failed[f.Name] = true
		}
	} else if err != nil {
		return err
	}

	for _, name := range checked {
		status := "ok"
		if failed[name] {
			status = "FAIL"
		}
		fmt.Fprintf(a.Out, "%-4s %s\n", status, name)
	}
	return err
}

// Diff prints what changes between resolving left and resolving right.
func (a *App) Diff(ctx context.Context, left, right []string) error {
	oldTree, err := a.loader.Resolve(ctx, left...)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", strings.Join(left, ":"), err)
	}
	newTree, err := a.loader.Resolve(ctx, right...)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", strings.Join(right, ":"), err)
	}

	diff := domain.Diff(oldTree, newTree)
	if diff.IsEmpty() {
		fmt.Fprintln(a.Out, "no differences")
		return nil
	}
	for _, loc := range diff.Locations() {
		switch {
		case hasKey(diff.Added, loc):
			fmt.Fprintf(a.Out, "+ %s: %s\n", loc, formatValue(diff.Added[loc]))
		case hasKey(diff.Removed, loc):
			fmt.Fprintf(a.Out, "- %s: %s\n", loc, formatValue(diff.Removed[loc]))
		default:
			pair := diff.Changed[loc]
			fmt.Fprintf(a.Out, "~ %s: %s -> %s\n", loc, formatValue(pair.Old), formatValue(pair.New))
		}
	}
	return nil
}

func hasKey(m map[string]any, k string) bool {
	_, ok := m[k]
	return ok
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case domain.Tree:
		return fmt.Sprintf("%v", val.Plain())
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
