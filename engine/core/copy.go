package core

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// DeepCopy creates a deep copy of v, preserving the concrete Input/Output
// type instead of devolving into a plain map as the generic deepcopy
// library would. Invariant from spec §3/§5: input references are owned
// exclusively by the running inference and must never alias the seed
// records past IWI, so every handoff into inference-local state goes
// through this.
func DeepCopy[T any](v T) (T, error) {
	var zero T
	switch src := any(v).(type) {
	case Input:
		return deepCopyTyped(src, zero, func(m map[string]any) any { return Input(m) })
	case Output:
		return deepCopyTyped(src, zero, func(m map[string]any) any { return Output(m) })
	default:
		return deepCopyGeneric(v, zero)
	}
}

func deepCopyTyped[T any, M ~map[string]any](src M, zero T, wrap func(map[string]any) any) (T, error) {
	if src == nil {
		return zero, nil
	}
	copied, err := deepCopyMap(map[string]any(src))
	if err != nil {
		return zero, fmt.Errorf("failed to deep copy: %w", err)
	}
	result, ok := wrap(copied).(T)
	if !ok {
		return zero, fmt.Errorf("failed to cast copied value to %T", zero)
	}
	return result, nil
}

func deepCopyMap(m map[string]any) (map[string]any, error) {
	copied := deepcopy.Copy(m)
	result, ok := copied.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to copy map")
	}
	return result, nil
}

func deepCopyGeneric[T any](v T, zero T) (T, error) {
	copied := deepcopy.Copy(v)
	result, ok := copied.(T)
	if !ok {
		return zero, fmt.Errorf("failed to cast copied value to %T", zero)
	}
	return result, nil
}
