// Package reference implements the tree-shaped, possibly multi-dimensional
// container described in spec §3 ("Reference"): a Leaf holds a single value,
// a List holds an ordered sequence (optionally marked Unpacked, meaning
// "explode into separate positional inputs downstream"), and a Named holds
// an ordered dict (the shape a selector's `branch` produces). ElementAction
// and CrossProduct are the two collective operations spec §3 requires.
package reference

import "fmt"

// Kind discriminates the three Ref shapes.
type Kind int

const (
	KindLeaf Kind = iota
	KindList
	KindNamed
)

// Field is one ordered key/value pair of a Named ref. A slice instead of a
// map keeps branch output order deterministic (spec §4.5: "Produces a dict
// with keys k1, k2, ...").
type Field struct {
	Key   string
	Value *Ref
}

// Ref is the recursive sum type backing the data model's Reference.
type Ref struct {
	Kind     Kind
	Value    any     // valid when Kind == KindLeaf
	Items    []*Ref  // valid when Kind == KindList
	Fields   []Field // valid when Kind == KindNamed
	Unpacked bool    // valid when Kind == KindList; see spec §4.5 "unpack"
}

// Leaf builds a single-value Ref.
func Leaf(v any) *Ref { return &Ref{Kind: KindLeaf, Value: v} }

// List builds an ordered Ref from items.
func List(items ...*Ref) *Ref { return &Ref{Kind: KindList, Items: items} }

// UnpackedList builds a List already marked as unpacked.
func UnpackedList(items ...*Ref) *Ref {
	return &Ref{Kind: KindList, Items: items, Unpacked: true}
}

// Named builds an ordered-dict Ref from fields, in the order given.
func Named(fields ...Field) *Ref { return &Ref{Kind: KindNamed, Fields: fields} }

func (r *Ref) IsLeaf() bool  { return r != nil && r.Kind == KindLeaf }
func (r *Ref) IsList() bool  { return r != nil && r.Kind == KindList }
func (r *Ref) IsNamed() bool { return r != nil && r.Kind == KindNamed }

// Get returns the value under key for a Named ref, or nil if absent or r is
// not Named.
func (r *Ref) Get(key string) *Ref {
	if r == nil || r.Kind != KindNamed {
		return nil
	}
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// AsMap renders a Named ref's immediate fields into a plain map of leaf
// values; nested List/Named fields are rendered via Materialize.
func (r *Ref) AsMap() map[string]any {
	if r == nil || r.Kind != KindNamed {
		return nil
	}
	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		out[f.Key] = f.Value.Materialize()
	}
	return out
}

// Materialize collapses a Ref into a plain Go value: a Leaf becomes its
// value, a List becomes a []any, a Named becomes a map[string]any.
func (r *Ref) Materialize() any {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case KindLeaf:
		return r.Value
	case KindList:
		out := make([]any, len(r.Items))
		for i, it := range r.Items {
			out[i] = it.Materialize()
		}
		return out
	case KindNamed:
		return r.AsMap()
	default:
		return nil
	}
}

// Leaves flattens r into its ordered sequence of leaf values, descending
// into Lists (Named refs are treated as opaque leaves - a branch-produced
// dict is a single value from the perspective of a downstream List/axis).
func (r *Ref) Leaves() []any {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case KindLeaf, KindNamed:
		return []any{r.Materialize()}
	case KindList:
		var out []any
		for _, it := range r.Items {
			out = append(out, it.Leaves()...)
		}
		return out
	default:
		return nil
	}
}

// ElementAction applies f pointwise across the aligned leaves of one or more
// refs of identical shape (spec §3). All refs must have the same list
// structure and list sizes at every level (Leaf and Named both count as leaf
// values); mismatched shapes are an error.
func ElementAction(f func(leaves ...any) (any, error), refs ...*Ref) (*Ref, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("element_action requires at least one reference")
	}
	shape := refs[0]
	if shape.IsList() {
		for _, r := range refs {
			if !r.IsList() || len(r.Items) != len(shape.Items) {
				return nil, fmt.Errorf("element_action: mismatched list shapes")
			}
		}
		items := make([]*Ref, len(shape.Items))
		for i := range shape.Items {
			aligned := make([]*Ref, len(refs))
			for j, r := range refs {
				aligned[j] = r.Items[i]
			}
			sub, err := ElementAction(f, aligned...)
			if err != nil {
				return nil, err
			}
			items[i] = sub
		}
		return &Ref{Kind: KindList, Items: items, Unpacked: shape.Unpacked}, nil
	}
	leaves := make([]any, len(refs))
	for i, r := range refs {
		if r.IsList() {
			return nil, fmt.Errorf("element_action: mismatched list shapes")
		}
		leaves[i] = r.Materialize()
	}
	result, err := f(leaves...)
	if err != nil {
		return nil, err
	}
	return Leaf(result), nil
}

// CrossProduct computes the Cartesian product of axes, each axis given as an
// ordered list of leaf values. The result is an ordered list of tuples
// ([]any, one element per axis), with the first axis varying slowest and the
// last axis varying fastest - spec §5's "deterministic axis order matching
// value_order" and "row-major order".
func CrossProduct(axes [][]any) [][]any {
	if len(axes) == 0 {
		return nil
	}
	combos := [][]any{{}}
	for _, axis := range axes {
		var next [][]any
		for _, combo := range combos {
			if len(axis) == 0 {
				// An empty axis contributes no combinations; mirrors an
				// empty Cartesian factor collapsing the whole product.
				continue
			}
			for _, v := range axis {
				row := make([]any, len(combo), len(combo)+1)
				copy(row, combo)
				row = append(row, v)
				next = append(next, row)
			}
		}
		combos = next
	}
	return combos
}
