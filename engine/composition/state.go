package composition

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// State accumulates the inference's dotted-path state tree (the
// "states.<step>.<field>" snapshot MetaValue sentinels are resolved
// against) as raw JSON, built up incrementally via sjson.Set. engine/inference
// writes IWI's paradigm, function concept and concept-to-infer names and the
// body's base_dir into it; MFP, MVP and TVA write nothing.
type State struct {
	raw []byte
}

// NewState starts an empty state tree.
func NewState() *State { return &State{raw: []byte("{}")} }

// Set writes value at the dotted path (spec-native `states.x.y` notation),
// returning an error if the path cannot be written.
func (s *State) Set(path string, value any) error {
	next, err := sjson.SetBytes(s.raw, path, value)
	if err != nil {
		return fmt.Errorf("composition: state set %q: %w", path, err)
	}
	s.raw = next
	return nil
}

// Snapshot decodes the accumulated state tree into a nested map, the shape
// MetaValue.Resolve and Condition.Evaluate expect.
func (s *State) Snapshot() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(s.raw, &out); err != nil {
		return nil, fmt.Errorf("composition: state snapshot: %w", err)
	}
	return out, nil
}
