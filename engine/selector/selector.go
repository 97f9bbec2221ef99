package selector

import (
	"fmt"

	"github.com/GEOGUANSIN/normCode-sub001/engine/reference"
	"github.com/GEOGUANSIN/normCode-sub001/engine/wrapper"
)

// Spec is a value_selectors entry (spec §3 "Selector spec").
type Spec struct {
	SourceConcept         string
	Index                 *int
	Key                   *string
	Unpack                bool
	UnpackBeforeSelection bool
	StripWrapper          bool
	NewWrapper            string
	Branch                map[string]string // output key -> wrapper type name, or "NULL"
}

// Apply runs spec against every leaf of source, per spec §4.5's "each
// selector is applied per-leaf to its source reference".
func Apply(spec Spec, source *reference.Ref, resolver Resolver) (*reference.Ref, error) {
	if source.IsList() {
		items := make([]*reference.Ref, len(source.Items))
		for i, it := range source.Items {
			sub, err := Apply(spec, it, resolver)
			if err != nil {
				return nil, err
			}
			items[i] = sub
		}
		return &reference.Ref{Kind: reference.KindList, Items: items}, nil
	}
	return applyLeaf(spec, source.Materialize(), resolver)
}

func applyLeaf(spec Spec, leaf any, resolver Resolver) (*reference.Ref, error) {
	decoded := decodeLeaf(leaf)

	if spec.UnpackBeforeSelection {
		list, ok := decoded.([]any)
		if !ok {
			return nil, fmt.Errorf("selector: unpack_before_selection requires a list target, got %T", decoded)
		}
		items := make([]*reference.Ref, len(list))
		for i, elem := range list {
			item := elem
			if spec.Key != nil {
				item = lookupKey(elem, *spec.Key)
			}
			final, err := finalizeSingle(spec, item, resolver)
			if err != nil {
				return nil, err
			}
			items[i] = final
		}
		return &reference.Ref{Kind: reference.KindList, Items: items, Unpacked: true}, nil
	}

	value := decoded
	if spec.Index != nil {
		value = lookupIndex(value, *spec.Index)
	}
	if spec.Key != nil {
		value = lookupKey(value, *spec.Key)
	}
	return finalize(spec, value, resolver)
}

// finalize applies the unpack marker: when spec.Unpack is set and value is
// itself a list, branch/strip/rewrap runs per element (spec §4.5 "branching
// composes with unpack: per-item branching when the selection is
// unpacked"); otherwise a scalar final value is wrapped as a singleton
// unpacked list.
func finalize(spec Spec, value any, resolver Resolver) (*reference.Ref, error) {
	if !spec.Unpack {
		return finalizeSingle(spec, value, resolver)
	}
	if list, ok := value.([]any); ok {
		items := make([]*reference.Ref, len(list))
		for i, elem := range list {
			leaf, err := finalizeSingle(spec, elem, resolver)
			if err != nil {
				return nil, err
			}
			items[i] = leaf
		}
		return &reference.Ref{Kind: reference.KindList, Items: items, Unpacked: true}, nil
	}
	leaf, err := finalizeSingle(spec, value, resolver)
	if err != nil {
		return nil, err
	}
	return &reference.Ref{Kind: reference.KindList, Items: []*reference.Ref{leaf}, Unpacked: true}, nil
}

// finalizeSingle applies branch (if set, taking precedence over
// strip_wrapper/new_wrapper per the documented-but-unwritten precedence the
// spec flags as load-bearing) or strip_wrapper/new_wrapper to one value.
func finalizeSingle(spec Spec, value any, resolver Resolver) (*reference.Ref, error) {
	if len(spec.Branch) > 0 {
		dict, err := applyBranch(spec.Branch, value, resolver)
		if err != nil {
			return nil, err
		}
		return reference.Leaf(dict), nil
	}

	final := value
	if s, ok := value.(string); ok {
		if spec.StripWrapper || spec.NewWrapper != "" {
			inner := s
			if w, ok := wrapper.Parse(s); ok {
				inner = w.Content
			}
			if spec.NewWrapper != "" {
				final = wrapper.Wrap(inner, wrapper.Type(spec.NewWrapper))
			} else {
				final = inner
			}
		}
	}
	return reference.Leaf(final), nil
}

// applyBranch implements spec §4.5's branch contract: for each ki:wi, NULL
// passes the raw inner content through unchanged; any other wi synthesizes a
// wrapped string of that type and resolves it via the standard table.
func applyBranch(branch map[string]string, value any, resolver Resolver) (map[string]any, error) {
	raw := rawInner(value)
	out := make(map[string]any, len(branch))
	for key, wi := range branch {
		if wi == "NULL" || wi == "" {
			out[key] = raw
			continue
		}
		synthesized := wrapper.Wrap(raw, wrapper.Type(wi))
		w, _ := wrapper.Parse(synthesized)
		resolved, err := ResolveWrapped(w, resolver)
		if err != nil {
			return nil, fmt.Errorf("selector: branch %q: %w", key, err)
		}
		out[key] = specialAsValue(resolved)
	}
	return out, nil
}

func lookupIndex(v any, idx int) any {
	list, ok := v.([]any)
	if !ok || idx < 0 || idx >= len(list) {
		return nil
	}
	return list[idx]
}

func lookupKey(v any, key string) any {
	dict, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return dict[key]
}

// ResolveTree walks r, resolving any leaf still holding a plain wrapped
// string through the wrapper resolution table. Leaves already materialized
// by a branch (maps) or already-resolved Specials pass through unchanged -
// spec §4.5 step 3's "resolve any wrapped strings... into their referenced
// content" applied after per-leaf selector processing.
func ResolveTree(r *reference.Ref, resolver Resolver) (*reference.Ref, error) {
	if r == nil {
		return nil, nil
	}
	switch r.Kind {
	case reference.KindList:
		items := make([]*reference.Ref, len(r.Items))
		for i, it := range r.Items {
			resolved, err := ResolveTree(it, resolver)
			if err != nil {
				return nil, err
			}
			items[i] = resolved
		}
		return &reference.Ref{Kind: reference.KindList, Items: items, Unpacked: r.Unpacked}, nil
	case reference.KindLeaf:
		resolved, err := resolveFinal(r.Value, resolver)
		if err != nil {
			return nil, err
		}
		return reference.Leaf(resolved), nil
	default:
		return r, nil
	}
}

func resolveFinal(value any, resolver Resolver) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	w, ok := wrapper.Parse(s)
	if !ok {
		return value, nil
	}
	return ResolveWrapped(w, resolver)
}
