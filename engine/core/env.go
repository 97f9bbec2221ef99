package core

import (
	"fmt"

	"dario.cat/mergo"
)

// EnvMap is a flat string environment, e.g. for tool invocations.
type EnvMap map[string]string

// Merge combines e with other, other's values taking precedence.
func (e EnvMap) Merge(other EnvMap) (EnvMap, error) {
	result := make(EnvMap, len(e))
	for k, v := range e {
		result[k] = v
	}
	if err := mergo.Merge(&result, other, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge env: %w", err)
	}
	return result, nil
}

func (e EnvMap) AsMap() map[string]any {
	result := make(map[string]any, len(e))
	for k, v := range e {
		result[k] = v
	}
	return result
}
