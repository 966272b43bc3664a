package view

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Kind identifies the variant of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one of *Scalar, *Sequence or *Record.
type Node interface {
	Kind() Kind
	// Interface converts the node back into plain Go values.
	Interface() any
	sealed()
}

// Scalar holds a leaf value: string, int64, float64, bool or nil.
type Scalar struct {
	Value any
}

func (*Scalar) Kind() Kind       { return KindScalar }
func (s *Scalar) Interface() any { return s.Value }
func (*Scalar) sealed()          {}

// Sequence holds converted list elements.
type Sequence struct {
	Items []Node
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) sealed()    {}

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.Items) }

// At returns the item at i.
func (s *Sequence) At(i int) (Node, bool) {
	if i < 0 || i >= len(s.Items) {
		return nil, false
	}
	return s.Items[i], true
}

func (s *Sequence) Interface() any {
	out := make([]any, len(s.Items))
	for i, item := range s.Items {
		out[i] = item.Interface()
	}
	return out
}

// Record is a mapping with a fixed set of named fields.
type Record struct {
	keys   []string
	fields map[string]Node
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) sealed()    {}

// Build converts tree into a Record. The tree is copied first.
func Build(tree domain.Tree) *Record {
	return buildRecord(tree.Clone())
}

// FromValue converts any tree value into a Node.
func FromValue(v any) Node {
	switch val := v.(type) {
	case domain.Tree:
		return buildRecord(val.Clone())
	case map[string]any:
		return buildRecord(domain.Tree(val).Clone())
	default:
		return convert(domain.CloneValue(v))
	}
}

func buildRecord(tree domain.Tree) *Record {
	r := &Record{
		keys:   tree.Keys(),
		fields: make(map[string]Node, len(tree)),
	}
	for k, v := range tree {
		r.fields[k] = convert(v)
	}
	return r
}

func convert(v any) Node {
	switch val := v.(type) {
	case domain.Tree:
		return buildRecord(val)
	case map[string]any:
		return buildRecord(domain.Tree(val))
	case []any:
		items := make([]Node, len(val))
		for i, item := range val {
			items[i] = convert(item)
		}
		return &Sequence{Items: items}
	case domain.Ref:
		// Unresolved references surface as their marker text.
		return &Scalar{Value: val.String()}
	default:
		return &Scalar{Value: v}
	}
}

// Keys returns the field names in lexical order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// Field returns the direct child called name.
func (r *Record) Field(name string) (Node, bool) {
	n, ok := r.fields[name]
	return n, ok
}

// Lookup walks path through nested records. An empty path returns r itself.
func (r *Record) Lookup(path ...string) (Node, bool) {
	var cur Node = r
	for _, seg := range path {
		rec, ok := cur.(*Record)
		if !ok {
			return nil, false
		}
		if cur, ok = rec.fields[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Record returns the nested record at path.
func (r *Record) Record(path ...string) (*Record, bool) {
	n, ok := r.Lookup(path...)
	if !ok {
		return nil, false
	}
	rec, ok := n.(*Record)
	return rec, ok
}

// Sequence returns the sequence at path.
func (r *Record) Sequence(path ...string) (*Sequence, bool) {
	n, ok := r.Lookup(path...)
	if !ok {
		return nil, false
	}
	seq, ok := n.(*Sequence)
	return seq, ok
}

func (r *Record) scalar(path []string) (any, bool) {
	n, ok := r.Lookup(path...)
	if !ok {
		return nil, false
	}
	s, ok := n.(*Scalar)
	if !ok {
		return nil, false
	}
	return s.Value, true
}

// String returns the string at path.
func (r *Record) String(path ...string) (string, bool) {
	v, _ := r.scalar(path)
	s, ok := v.(string)
	return s, ok
}

// Int returns the integer at path. Floats are not truncated.
func (r *Record) Int(path ...string) (int64, bool) {
	v, _ := r.scalar(path)
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// Float returns the number at path, widening integers.
func (r *Record) Float(path ...string) (float64, bool) {
	v, _ := r.scalar(path)
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Bool returns the boolean at path.
func (r *Record) Bool(path ...string) (bool, bool) {
	v, _ := r.scalar(path)
	b, ok := v.(bool)
	return b, ok
}

func (r *Record) Interface() any {
	return r.Map()
}

// Map converts the record back into nested map[string]any values.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, n := range r.fields {
		out[k] = n.Interface()
	}
	return out
}

// MarshalJSON renders the record as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Decode copies the record into out, a pointer to a struct or map,
// matching fields by their mapstructure tags.
func (r *Record) Decode(out any) error {
	if err := mapstructure.Decode(r.Map(), out); err != nil {
		return fmt.Errorf("failed to decode view: %w", err)
	}
	return nil
}

// Walk visits every scalar and sequence leaf in lexical key order.
// Paths are the field names from the root of r.
func (r *Record) Walk(fn func(path []string, n Node)) {
	r.walk(nil, fn)
}

func (r *Record) walk(prefix []string, fn func([]string, Node)) {
	for _, k := range r.keys {
		path := append(append([]string(nil), prefix...), k)
		if rec, ok := r.fields[k].(*Record); ok {
			rec.walk(path, fn)
			continue
		}
		fn(path, r.fields[k])
	}
}
