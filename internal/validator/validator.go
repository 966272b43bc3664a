package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Resolver is the part of the loader the validator needs.
type Resolver interface {
	List(ctx context.Context) ([]string, error)
	Resolve(ctx context.Context, names ...string) (domain.Tree, error)
}

// Failure is one parameter set that could not be resolved on its own.
type Failure struct {
	Name string
	Err  error
}

// Error lists every failing set.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		lines[i] = fmt.Sprintf("%s: %v", f.Name, f.Err)
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Failures), strings.Join(lines, "\n- "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Validate resolves each of names on its own and reports every set that is
// missing, has a broken @include chain or an unresolvable @ref:. With no
// names, every set the store lists is checked. It returns the names checked.
func Validate(ctx context.Context, r Resolver, names []string) ([]string, error) {
	available, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameter sets: %w", err)
	}
	if len(names) == 0 {
		names = available
	}

	known := make(map[string]bool, len(available))
	for _, n := range available {
		known[n] = true
	}

	var failures []Failure
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Resolve only warns about missing top-level sets.
		if !known[name] {
			failures = append(failures, Failure{Name: name, Err: domain.ErrParamSetNotFound})
			continue
		}
		if _, err := r.Resolve(ctx, name); err != nil {
			failures = append(failures, Failure{Name: name, Err: err})
		}
	}

	if len(failures) > 0 {
		return names, &Error{Failures: failures}
	}
	return names, nil
}
