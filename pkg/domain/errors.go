package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrParamSetNotFound is returned by stores when no parameter set exists under a name.
var ErrParamSetNotFound = errors.New("parameter set not found")

// ErrInvalidSetName is the sentinel wrapped by InvalidSetNameError.
var ErrInvalidSetName = errors.New("invalid parameter set name")

// ErrNoParamSetNames is returned when a session is requested without any set names.
var ErrNoParamSetNames = errors.New("no parameter set names given")

// ErrInvalidInclude is returned when an @include directive is not a list of names.
var ErrInvalidInclude = errors.New("invalid include directive")

// ErrMissingInclude is the sentinel wrapped by MissingIncludeError.
var ErrMissingInclude = errors.New("missing include")

// ErrIncludeCycle is the sentinel wrapped by IncludeCycleError.
var ErrIncludeCycle = errors.New("include cycle")

// ErrReference is wrapped by every cross-reference resolution failure.
var ErrReference = errors.New("cross-reference error")

// ErrRootEscape is returned when a reference climbs above the root with "../".
var ErrRootEscape = fmt.Errorf("%w: escapes root", ErrReference)

// ErrUnresolvedReference is returned when a reference names an absent key.
var ErrUnresolvedReference = fmt.Errorf("%w: no such key", ErrReference)

// ErrTypeMismatch is returned when a reference descends through a non-mapping value.
var ErrTypeMismatch = fmt.Errorf("%w: not a mapping", ErrReference)

// ErrReferenceCycle is returned when references point at each other in a loop.
var ErrReferenceCycle = fmt.Errorf("%w: cycle", ErrReference)

// InvalidSetNameError reports a set name that is empty or would leave the store root.
type InvalidSetNameError struct {
	Name string
}

func (e *InvalidSetNameError) Error() string {
	return fmt.Sprintf("invalid parameter set name %q", e.Name)
}

func (e *InvalidSetNameError) Unwrap() error { return ErrInvalidSetName }

// CheckSetName rejects names that are empty, absolute or climb out of the
// store with "..". Names are slash-separated on every platform.
func CheckSetName(name string) error {
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return &InvalidSetNameError{Name: name}
	}
	return nil
}

// MissingIncludeError reports an @include entry naming a set the store does not have.
type MissingIncludeError struct {
	Name string // the include that could not be loaded
	From string // the set that declared it
}

func (e *MissingIncludeError) Error() string {
	return fmt.Sprintf("no parameter set found for include %q (included from %q)", e.Name, e.From)
}

func (e *MissingIncludeError) Unwrap() error { return ErrMissingInclude }

// IncludeCycleError reports a set that (transitively) includes itself.
type IncludeCycleError struct {
	Chain []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("include cycle detected: %s", strings.Join(e.Chain, " -> "))
}

func (e *IncludeCycleError) Unwrap() error { return ErrIncludeCycle }

// ReferenceError describes a failed cross-reference lookup.
// Kind is one of ErrRootEscape, ErrUnresolvedReference, ErrTypeMismatch or ErrReferenceCycle.
type ReferenceError struct {
	Kind     error
	Location string // slash-separated location of the marker
	Path     string // the path expression being resolved
	Key      string // the segment that failed, if any
}

func (e *ReferenceError) Error() string {
	msg := fmt.Sprintf("resolving %s%s at /%s", RefPrefix, e.Path, e.Location)
	if e.Key != "" {
		return fmt.Sprintf("%s: %v: %s", msg, e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *ReferenceError) Unwrap() error { return e.Kind }
