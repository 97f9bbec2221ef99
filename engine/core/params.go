package core

import (
	"fmt"
	"maps"

	"dario.cat/mergo"
)

// Input is a runtime input dictionary: the "vars" map threaded through the
// composition planner, and the seed of the MVP-produced per-combination
// dicts handed to TVA.
type Input map[string]any

// Output is a raw (not yet wrapped) inference result.
type Output map[string]any

func merge(dst, src map[string]any, kind string) (map[string]any, error) {
	result := make(map[string]any)
	maps.Copy(result, dst)
	if err := mergo.Merge(&result, src, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return nil, fmt.Errorf("failed to merge %s: %w", kind, err)
	}
	return result, nil
}

// NewInput builds an Input from a map, never returning nil.
func NewInput(m map[string]any) Input {
	if m == nil {
		return make(Input)
	}
	return Input(m)
}

// Merge returns a new Input with other's keys overriding i's.
func (i Input) Merge(other Input) (Input, error) {
	result, err := merge(i, other, "input")
	if err != nil {
		return nil, err
	}
	return Input(result), nil
}

func (i Input) Prop(key string) any {
	if i == nil {
		return nil
	}
	return i[key]
}

func (i Input) Set(key string, value any) {
	if i == nil {
		return
	}
	i[key] = value
}

func (i Input) AsMap() map[string]any {
	if i == nil {
		return nil
	}
	result := make(map[string]any, len(i))
	maps.Copy(result, i)
	return result
}

// Clone deep-copies the Input.
func (i Input) Clone() (Input, error) {
	return DeepCopy(i)
}

func (o Output) Prop(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

func (o Output) Set(key string, value any) {
	if o == nil {
		return
	}
	o[key] = value
}

func (o Output) AsMap() map[string]any {
	if o == nil {
		return nil
	}
	result := make(map[string]any, len(o))
	maps.Copy(result, o)
	return result
}
