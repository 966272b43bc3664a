package resolve

import (
	"context"
	"reflect"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// frame is one level of the dict stack: a mapping and its location from the root.
type frame struct {
	tree domain.Tree
	loc  string
}

// site identifies the marker a lookup was started for, for error reporting.
type site struct {
	loc  string
	path string
}

// slot identifies one key of one mapping. Locations are not usable as keys
// because a key may itself contain "/".
type slot struct {
	tree uintptr
	key  string
}

type refWalker struct {
	ctx   context.Context
	r     *Resolver
	canon map[uintptr][]frame // where each original mapping lives
	// resolved marks slots whose value was produced by a reference; the walk
	// never descends into them, so aliased subtrees are only resolved from
	// their own position.
	resolved map[slot]bool
	active   map[slot]bool
}

// References resolves every Ref in tree with a default Resolver.
func References(tree domain.Tree) (domain.Tree, error) {
	return NewResolver(nil).References(context.Background(), tree)
}

// References replaces each Ref held directly by a mapping of tree with the
// value its path points at. Resolution happens in place and tree is returned.
// Results are not copied, so two references to the same mapping alias it.
//
// A Ref whose target is itself an unresolved Ref resolves that target first,
// from the target's own position. Sequences are left untouched.
func (r *Resolver) References(ctx context.Context, tree domain.Tree) (domain.Tree, error) {
	if tree == nil {
		return tree, nil
	}
	w := &refWalker{
		ctx:      ctx,
		r:        r,
		canon:    make(map[uintptr][]frame),
		resolved: make(map[slot]bool),
		active:   make(map[slot]bool),
	}
	root := []frame{{tree: tree}}
	w.index(root)

	if err := w.walk(root); err != nil {
		return nil, err
	}
	return tree, nil
}

func (w *refWalker) index(stack []frame) {
	top := stack[len(stack)-1]
	w.canon[treeID(top.tree)] = stack
	for k, v := range top.tree {
		if sub, ok := v.(domain.Tree); ok && sub != nil {
			if _, seen := w.canon[treeID(sub)]; seen {
				continue
			}
			w.index(push(stack, frame{tree: sub, loc: joinLoc(top.loc, k)}))
		}
	}
}

func (w *refWalker) walk(stack []frame) error {
	top := stack[len(stack)-1]
	// Lexical order keeps error reporting deterministic.
	for _, k := range top.tree.Keys() {
		switch v := top.tree[k].(type) {
		case domain.Ref:
			if _, err := w.resolveAt(stack, k); err != nil {
				return err
			}
		case domain.Tree:
			if w.resolved[slot{treeID(top.tree), k}] {
				continue
			}
			if err := w.walk(push(stack, frame{tree: v, loc: joinLoc(top.loc, k)})); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveAt resolves the value stored under key in the top mapping of stack
// and writes the result back. Non-Ref values are returned unchanged.
// A Ref is always resolved from the position its mapping holds in the
// original tree, whatever path the caller took to reach it.
func (w *refWalker) resolveAt(stack []frame, key string) (any, error) {
	top := stack[len(stack)-1]
	ref, ok := top.tree[key].(domain.Ref)
	if !ok {
		return top.tree[key], nil
	}

	home := stack
	if own, ok := w.canon[treeID(top.tree)]; ok {
		home = own
	}

	id := slot{treeID(top.tree), key}
	origin := site{loc: joinLoc(home[len(home)-1].loc, key), path: ref.Path}
	if w.active[id] {
		return nil, refError(domain.ErrReferenceCycle, origin, "")
	}
	w.active[id] = true
	defer delete(w.active, id)

	val, err := w.lookup(ref.Path, home, origin)
	if err != nil {
		return nil, err
	}

	// A mapping that contains the marker would make the tree cyclic.
	if sub, ok := val.(domain.Tree); ok {
		for _, f := range home {
			if treeID(f.tree) == treeID(sub) {
				return nil, refError(domain.ErrReferenceCycle, origin, "")
			}
		}
	}

	top.tree[key] = val
	w.resolved[id] = true

	if w.r.hooks.OnReference != nil {
		w.r.hooks.OnReference(w.ctx, &domain.ReferenceEvent{
			EventBase: domain.EventBase{Timestamp: w.r.now(), Type: domain.EventReferenceResolved},
			Location:  origin.loc,
			Path:      origin.path,
		})
	}
	return val, nil
}

// lookup follows expr from the top of stack.
func (w *refWalker) lookup(expr string, stack []frame, origin site) (any, error) {
	// Start at root
	if strings.HasPrefix(expr, "/") {
		return w.lookup(expr[1:], stack[:1], origin)
	}

	// Go one level up
	if strings.HasPrefix(expr, "../") {
		if len(stack) == 1 {
			return nil, refError(domain.ErrRootEscape, origin, "..")
		}
		return w.lookup(expr[len("../"):], stack[:len(stack)-1], origin)
	}

	top := stack[len(stack)-1]

	// Go one level down
	if head, rest, found := strings.Cut(expr, "/"); found {
		if _, ok := top.tree[head]; !ok {
			return nil, refError(domain.ErrUnresolvedReference, origin, head)
		}
		v, err := w.resolveAt(stack, head)
		if err != nil {
			return nil, err
		}
		sub, ok := v.(domain.Tree)
		if !ok {
			return nil, refError(domain.ErrTypeMismatch, origin, head)
		}
		// "../" later in the path climbs back along the path actually walked.
		return w.lookup(rest, push(stack, frame{tree: sub, loc: joinLoc(top.loc, head)}), origin)
	}

	// Resolve at this level
	if _, ok := top.tree[expr]; !ok {
		return nil, refError(domain.ErrUnresolvedReference, origin, expr)
	}
	return w.resolveAt(stack, expr)
}

func refError(kind error, origin site, key string) error {
	return &domain.ReferenceError{
		Kind:     kind,
		Location: origin.loc,
		Path:     origin.path,
		Key:      key,
	}
}

// push returns a new stack; the caller's backing array is never shared.
func push(stack []frame, f frame) []frame {
	out := make([]frame, len(stack)+1)
	copy(out, stack)
	out[len(stack)] = f
	return out
}

func joinLoc(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "/" + key
}

func treeID(t domain.Tree) uintptr {
	return reflect.ValueOf(t).Pointer()
}
