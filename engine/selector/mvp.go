package selector

import (
	"fmt"
	"sort"

	"github.com/GEOGUANSIN/normCode-sub001/engine/reference"
)

// OrderEntry is one working_interpretation.value_order entry: a name (concept
// name or selector key) and its integer position.
type OrderEntry struct {
	Name  string
	Index int
}

// Seed is one states.values seed record: a concept name paired with its
// reference, as produced by IWI.
type Seed struct {
	ConceptName string
	Ref         *reference.Ref
}

// BuildValues runs the full MVP procedure (spec §4.5 steps 1-6): order,
// select, resolve+format, cross-product, and format-as-dict. The result is a
// flat reference.Ref List of Named dicts, one per input combination.
func BuildValues(order []OrderEntry, selectors map[string]Spec, seeds []Seed, resolver Resolver) (*reference.Ref, error) {
	sorted := make([]OrderEntry, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	used := make([]bool, len(seeds))
	var axes [][]any

	for _, entry := range sorted {
		spec, hasSpec := selectors[entry.Name]

		var source *reference.Ref
		if hasSpec && spec.SourceConcept != "" {
			for _, s := range seeds {
				if s.ConceptName == spec.SourceConcept {
					source = s.Ref
					break
				}
			}
		} else {
			for i, s := range seeds {
				if !used[i] && s.ConceptName == entry.Name {
					source = s.Ref
					used[i] = true
					break
				}
			}
		}
		if source == nil {
			// Missing source: logged upstream as a warning, slot simply
			// absent (spec §7 "Selection errors").
			continue
		}

		var specPtr *Spec
		if hasSpec {
			specPtr = &spec
		}
		axis, err := SelectAxis(specPtr, source, resolver)
		if err != nil {
			return nil, fmt.Errorf("selector: entry %q: %w", entry.Name, err)
		}
		axes = append(axes, axis)
	}

	combos := reference.CrossProduct(axes)
	items := make([]*reference.Ref, len(combos))
	for i, combo := range combos {
		items[i] = FormatCombination(combo)
	}
	return &reference.Ref{Kind: reference.KindList, Items: items}, nil
}

// SelectAxis computes the ordered, resolved, flattened leaf sequence for one
// value_order entry: apply the selector (if any) to source, resolve any
// remaining wrapped leaves, and flatten into the axis's values.
func SelectAxis(spec *Spec, source *reference.Ref, resolver Resolver) ([]any, error) {
	r := source
	if spec != nil {
		applied, err := Apply(*spec, source, resolver)
		if err != nil {
			return nil, err
		}
		r = applied
	}
	resolved, err := ResolveTree(r, resolver)
	if err != nil {
		return nil, err
	}
	return resolved.Leaves(), nil
}

// FormatCombination implements spec §4.5 step 5: Special values are promoted
// to their canonical dict key; everything else becomes input_1, input_2, ...
// in order of appearance.
func FormatCombination(combo []any) *reference.Ref {
	fields := make([]reference.Field, 0, len(combo))
	counter := 1
	for _, v := range combo {
		if sp, ok := v.(Special); ok {
			fields = append(fields, reference.Field{Key: sp.Key, Value: reference.Leaf(sp.Value)})
			continue
		}
		key := fmt.Sprintf("input_%d", counter)
		counter++
		fields = append(fields, reference.Field{Key: key, Value: reference.Leaf(v)})
	}
	return reference.Named(fields...)
}
