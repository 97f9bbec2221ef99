// Package paradigm implements the paradigm registry and blueprint types
// (spec §4.2): the declarative JSON/YAML document naming a tool/affordance
// environment and an ordered sequence of steps that MFP turns into a single
// callable for TVA to invoke.
package paradigm

import (
	"encoding/json"
	"fmt"

	"dario.cat/mergo"

	"github.com/GEOGUANSIN/normCode-sub001/engine/composition"
)

// metaValueSentinel is the wire form of a MetaValue reference embedded in a
// paradigm document: {"__type__":"MetaValue","key":"…"} (spec §6 "Paradigm
// file format"). It appears both as an MFP step param value and, in a
// composition node, as the function field.
type metaValueSentinel struct {
	Type string `json:"__type__" yaml:"__type__"`
	Key  string `json:"key"      yaml:"key"`
}

// asMetaValue reports whether v is a decoded metaValueSentinel object, and
// if so returns its key as a composition.MetaValue.
func asMetaValue(v any) (composition.MetaValue, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	if t, _ := m["__type__"].(string); t != "MetaValue" {
		return "", false
	}
	key, ok := m["key"].(string)
	if !ok {
		return "", false
	}
	return composition.MetaValue(key), true
}

// SequenceStep is one sequence_spec.steps entry (spec §4.2/§6): produces a
// named callable in the MFP scope by invoking Affordance with Params. The
// one step that invokes composition_tool.compose carries its plan nested
// inside Params["plan"] (an array of composition nodes) alongside
// Params["return_key"]; see CompositionPlan.
type SequenceStep struct {
	StepIndex  int            `json:"step_index"         yaml:"step_index"`
	Affordance string         `json:"affordance"         yaml:"affordance"`
	Params     map[string]any `json:"params,omitempty"   yaml:"params,omitempty"`
	ResultKey  string         `json:"result_key"         yaml:"result_key"`
}

// Sentinels extracts the subset of Params whose value is a MetaValue
// sentinel object, for composition.ResolveParams.
func (s SequenceStep) Sentinels() map[string]composition.MetaValue {
	out := make(map[string]composition.MetaValue)
	for k, v := range s.Params {
		if mv, ok := asMetaValue(v); ok {
			out[k] = mv
		}
	}
	return out
}

// IsCompositionStep reports whether this step carries a params.plan, i.e.
// is the one step in sequence_spec that invokes composition_tool.compose.
func (s SequenceStep) IsCompositionStep() bool {
	_, ok := s.Params["plan"]
	return ok
}

// CompositionPlan decodes Params["plan"] (an ordered list of composition
// nodes) and Params["return_key"] into a composition.Plan, for the step that
// invokes composition_tool.compose.
func (s SequenceStep) CompositionPlan() (composition.Plan, error) {
	raw, ok := s.Params["plan"]
	if !ok {
		return composition.Plan{}, fmt.Errorf("paradigm: step %q has no params.plan", s.ResultKey)
	}
	items, ok := raw.([]any)
	if !ok {
		return composition.Plan{}, fmt.Errorf("paradigm: step %q params.plan must be a list", s.ResultKey)
	}
	nodes := make([]composition.Node, 0, len(items))
	for i, item := range items {
		node, err := decodeNode(item)
		if err != nil {
			return composition.Plan{}, fmt.Errorf("paradigm: step %q plan[%d]: %w", s.ResultKey, i, err)
		}
		nodes = append(nodes, node)
	}
	returnKey, _ := s.Params["return_key"].(string)
	return composition.Plan{Nodes: nodes, ReturnKey: returnKey}, nil
}

func decodeNode(raw any) (composition.Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return composition.Node{}, fmt.Errorf("composition node must be an object")
	}
	outputKey, _ := m["output_key"].(string)
	fn, err := decodeFunctionRef(m["function"])
	if err != nil {
		return composition.Node{}, fmt.Errorf("node %q: %w", outputKey, err)
	}
	node := composition.Node{OutputKey: outputKey, Function: fn}

	if rawParams, ok := m["params"].(map[string]any); ok {
		node.Params = make(map[string]string, len(rawParams))
		for k, v := range rawParams {
			name, ok := v.(string)
			if !ok {
				return composition.Node{}, fmt.Errorf("node %q param %q must be a name string", outputKey, k)
			}
			node.Params[k] = name
		}
	}
	if lit, ok := m["literal_params"].(map[string]any); ok {
		node.LiteralParams = lit
	}
	if cond, ok := m["condition"].(map[string]any); ok {
		key, _ := cond["key"].(string)
		op, _ := cond["operator"].(string)
		node.Condition = &composition.Condition{Key: key, Op: op}
	}
	return node, nil
}

// decodeFunctionRef accepts either a plain affordance/callable name or a
// MetaValue sentinel object wrapping one (spec §6: "the same sentinel
// denotes a MFP-scope callable reference").
func decodeFunctionRef(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		if mv, ok := asMetaValue(t); ok {
			return string(mv), nil
		}
		return "", fmt.Errorf("function sentinel missing key")
	default:
		return "", fmt.Errorf("function must be a string or MetaValue sentinel")
	}
}

// SequenceSpec is the ordered step list a paradigm declares.
type SequenceSpec struct {
	Steps []SequenceStep `json:"steps" yaml:"steps"`
}

// Paradigm is a loaded, declarative blueprint (spec §3 "Paradigm").
type Paradigm struct {
	Name         string              `json:"-"            yaml:"-"`
	Extends      string              `json:"extends,omitempty" yaml:"extends,omitempty"`
	Metadata     Metadata            `json:"metadata"      yaml:"metadata"`
	EnvSpec      composition.EnvSpec `json:"env_spec"      yaml:"env_spec"`
	SequenceSpec SequenceSpec        `json:"sequence_spec" yaml:"sequence_spec"`
}

// mergeOver merges base's fields into a copy, then overrides with p's
// non-zero fields, implementing "extends: <name>" inheritance (SPEC_FULL
// §3): a child paradigm inherits env_spec/sequence_spec wholesale from its
// base and only needs to declare what it changes. mergo.WithOverride alone
// (no WithAppendSlice) replaces slice-valued fields wholesale rather than
// concatenating base and child steps, so step_index stays coherent.
func (p *Paradigm) mergeOver(base *Paradigm) (*Paradigm, error) {
	merged := *base
	if err := mergo.Merge(&merged, p, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("paradigm: merging %q over base %q: %w", p.Name, p.Extends, err)
	}
	merged.Name = p.Name
	merged.Extends = ""
	return &merged, nil
}

// AsMap renders the paradigm back to a generic map, e.g. for logging or
// smart-template bundling of its metadata.
func (p *Paradigm) AsMap() (map[string]any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("paradigm: marshal: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("paradigm: unmarshal to map: %w", err)
	}
	return out, nil
}
