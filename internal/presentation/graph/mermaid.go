package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Edge is one @include entry: From lists To.
type Edge struct {
	From string
	To   string
}

// IncludeGraph collects the parameter sets touched while resolving names.
// Feed it through Hooks and render it with GenerateMermaid.
type IncludeGraph struct {
	mu      sync.Mutex
	roots   []string
	edges   []Edge
	missing []string
	seen    map[Edge]bool
}

// NewIncludeGraph creates an empty graph.
func NewIncludeGraph() *IncludeGraph {
	return &IncludeGraph{seen: make(map[Edge]bool)}
}

// Hooks returns lifecycle hooks that record into g.
func (g *IncludeGraph) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnParamSetLoaded: func(_ context.Context, e *domain.ParamSetEvent) {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.roots = append(g.roots, e.Name)
		},
		OnParamSetMissing: func(_ context.Context, e *domain.ParamSetEvent) {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.roots = append(g.roots, e.Name)
			g.missing = append(g.missing, e.Name)
		},
		OnInclude: func(_ context.Context, e *domain.ParamSetEvent) {
			g.mu.Lock()
			defer g.mu.Unlock()
			edge := Edge{From: e.From, To: e.Name}
			// Diamonds resolve the shared set once per path.
			if !g.seen[edge] {
				g.seen[edge] = true
				g.edges = append(g.edges, edge)
			}
		},
	}
}

// Roots returns the top-level names in merge order.
func (g *IncludeGraph) Roots() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.roots...)
}

// Edges returns the include edges in the order they were resolved.
func (g *IncludeGraph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge(nil), g.edges...)
}

// GenerateMermaid produces a Mermaid flowchart of g.
// It applies semantic styling:
// - Top-level set: (["Stadium"])
// - Included set: [Rectangle]
// Top-level sets are chained by dotted "then" arrows in merge order and each
// include edge is labelled with its position in the including set's list.
// Sets that were not found get the missing class.
func GenerateMermaid(g *IncludeGraph) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool)
	declare := func(name, opener, closer string) {
		if declared[name] {
			return
		}
		declared[name] = true
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer))
	}

	for _, name := range g.roots {
		declare(name, "([", "])")
	}
	for _, e := range g.edges {
		declare(e.From, "[", "]")
		declare(e.To, "[", "]")
	}

	// Merge order
	for i := 1; i < len(g.roots); i++ {
		sb.WriteString(fmt.Sprintf("    %s -. \"then\" .-> %s\n",
			sanitizeMermaidID(g.roots[i-1]), sanitizeMermaidID(g.roots[i])))
	}

	// Includes; events arrive children first but keep list order per parent.
	position := make(map[string]int)
	for _, e := range g.edges {
		position[e.From]++
		sb.WriteString(fmt.Sprintf("    %s -- \"%d\" --> %s\n",
			sanitizeMermaidID(e.From), position[e.From], sanitizeMermaidID(e.To)))
	}

	if len(g.missing) > 0 {
		sb.WriteString("\n    %% Missing Sets\n")
		sb.WriteString("    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:4,color:#000;\n")
		for _, name := range g.missing {
			sb.WriteString(fmt.Sprintf("    class %s missing;\n", sanitizeMermaidID(name)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
