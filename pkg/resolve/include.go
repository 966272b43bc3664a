package resolve

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Includes resolves the includes of set against store with a default Resolver.
func Includes(ctx context.Context, store ports.ParamStore, set *domain.ParamSet) (domain.Tree, error) {
	return NewResolver(store).Includes(ctx, set)
}

// Includes loads every set named by set.Includes (recursively, depth-first),
// folds them left to right with Merge and overlays set's own tree on top.
// A missing include fails with *domain.MissingIncludeError; a set that
// includes itself, directly or transitively, fails with *domain.IncludeCycleError.
// The same set may still be included along several branches.
func (r *Resolver) Includes(ctx context.Context, set *domain.ParamSet) (domain.Tree, error) {
	return r.includes(ctx, set, []string{set.Name})
}

func (r *Resolver) includes(ctx context.Context, set *domain.ParamSet, chain []string) (domain.Tree, error) {
	inherited := domain.Tree{}

	for _, name := range set.Includes {
		// DFS Cycle Detection: the chain only holds the active path, so
		// diamonds (two branches sharing an ancestor) are fine.
		if slices.Contains(chain, name) {
			return nil, &domain.IncludeCycleError{Chain: append(slices.Clone(chain), name)}
		}

		r.logger.Debug("including parameter set", "include", name, "from", set.Name)

		raw, err := r.store.Load(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrParamSetNotFound) {
				return nil, &domain.MissingIncludeError{Name: name, From: set.Name}
			}
			return nil, fmt.Errorf("failed to load include %q: %w", name, err)
		}

		included, err := domain.Parse(name, raw)
		if err != nil {
			return nil, err
		}

		resolved, err := r.includes(ctx, included, append(slices.Clone(chain), name))
		if err != nil {
			return nil, err
		}

		if r.hooks.OnInclude != nil {
			r.hooks.OnInclude(ctx, &domain.ParamSetEvent{
				EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventIncludeResolved},
				Name:      name,
				From:      set.Name,
			})
		}

		inherited = Merge(inherited, resolved)
	}

	// Overlay the set's own keys on top of everything it inherits.
	return Merge(inherited, set.Tree), nil
}
