package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// Extensions lists the document formats resolved for a parameter set name, in lookup order.
// Markdown documents contribute their frontmatter; the body is ignored.
var Extensions = []string{".json", ".yaml", ".yml", ".md"}

// Loader adapts a Loam repository to the ports.ParamStore interface.
type Loader struct {
	Repo core.Repository
	Root string
}

// New opens the directory at root as a Loam repository.
// Loam runs in strict mode so JSON integers are not widened to float64,
// and read-only mode because parameter sets are never written back.
func New(root string, opts ...loam.Option) (*Loader, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	options := append([]loam.Option{
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	}, opts...)

	repo, err := loam.Init(absPath, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return NewFromRepo(repo, absPath), nil
}

// NewFromRepo wraps an already initialized repository rooted at root.
func NewFromRepo(repo core.Repository, root string) *Loader {
	return &Loader{Repo: repo, Root: root}
}

// Load retrieves the metadata of the document named name.
func (l *Loader) Load(ctx context.Context, name string) (map[string]any, error) {
	if err := domain.CheckSetName(name); err != nil {
		return nil, err
	}

	// Loam resolves "base" to base.json/base.md itself, but reports a missing
	// document as a generic error; check the listing first so absence maps
	// onto domain.ErrParamSetNotFound.
	sources, err := l.sources(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := sources[name]; !ok {
		return nil, domain.ErrParamSetNotFound
	}

	doc, err := l.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	raw, _ := plain(doc.Metadata).(map[string]any)
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// List returns the names of all parameter documents below Root.
// Names are slash-separated paths relative to Root without extension.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	sources, err := l.sources(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(sources))
	for name, n := range sources {
		// Loam drops the extension, so base.json and base.yaml list as the same ID.
		if n > 1 {
			return nil, fmt.Errorf("collision detected: set '%s' is defined in %d documents", name, n)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// sources counts the documents Loam lists under each set name.
// Loam reconciles its index with the disk on every List; in read-only mode
// the index stays in memory and nothing is written below Root.
func (l *Loader) sources(ctx context.Context) (map[string]int, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]int, len(docs))
	for _, doc := range docs {
		// Rows of a CSV collection are listed as "<file>.csv/<row>".
		if dir := path.Dir(doc.ID); dir != "." && path.Ext(dir) != "" && !isKnownExtension(path.Ext(dir)) {
			continue
		}
		out[trimExtension(doc.ID)]++
	}
	return out, nil
}

// plain turns Loam metadata into the plain maps and slices domain.Parse
// expects. Nested frontmatter mappings come back as core.Metadata.
func plain(v any) any {
	switch x := v.(type) {
	case core.Metadata:
		return plain(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = plain(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func isKnownExtension(ext string) bool {
	for _, known := range Extensions {
		if strings.EqualFold(ext, known) {
			return true
		}
	}
	return false
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
