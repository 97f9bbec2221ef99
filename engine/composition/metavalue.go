// Package composition implements MFP (Memory Function Perception): binding a
// paradigm's declared tools/affordances into callables, and compiling its
// sequence_spec composition plan into the single function TVA invokes.
package composition

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// MetaValue is a dotted-path sentinel naming a location in the inference
// state snapshot (spec §4.2 "resolved via a MetaValue sentinel keyed e.g.
// states.function.concept.name"). Vertical-input sources and MFP step
// params both use this form.
type MetaValue string

// Resolve looks up m inside state (a nested map snapshot of inference
// state) using gjson's dotted-path query language, which matches this
// spec's own dotted-path notation directly.
func (m MetaValue) Resolve(state map[string]any) (any, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("composition: marshal state snapshot: %w", err)
	}
	result := gjson.GetBytes(raw, string(m))
	if !result.Exists() {
		return nil, fmt.Errorf("composition: meta value %q not found in state", m)
	}
	return result.Value(), nil
}

// ResolveParams walks params, replacing the value of every key named in
// sentinels (the caller's set of MetaValue sentinel params, e.g.
// paradigm.SequenceStep.Sentinels) with its resolved value; other values
// pass through unchanged.
func ResolveParams(params map[string]any, sentinels map[string]MetaValue, state map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(params))
	for k, v := range params {
		if mv, ok := sentinels[k]; ok {
			val, err := mv.Resolve(state)
			if err != nil {
				return nil, err
			}
			resolved[k] = val
			continue
		}
		resolved[k] = v
	}
	return resolved, nil
}
