package composition

import (
	"fmt"
	"strings"
)

// Invokable is the contract every paradigm tool exposes: a bounded,
// reflection-free dispatch by affordance method name. Go has no safe
// eval() for an arbitrary `call_code` source string, so affordance
// dispatch is a method-name lookup against a concrete tool interface
// instead of executing text as code - the idiomatic Go analogue of the
// declarative "evaluate call_code in a scope containing tool, params"
// step (spec §4.4).
type Invokable interface {
	Invoke(method string, kwargs map[string]any, positional []any) (any, error)
}

// Affordance is one tool's affordance declaration: call_code names the
// bound method, optionally qualified as "tool.method" (the qualifier is
// stripped; only the method name is used for dispatch).
type Affordance struct {
	Name     string `json:"affordance_name" yaml:"affordance_name"`
	CallCode string `json:"call_code" yaml:"call_code"`
}

func (a Affordance) method() string {
	if i := strings.LastIndex(a.CallCode, "."); i >= 0 {
		return a.CallCode[i+1:]
	}
	return a.CallCode
}

// ToolDecl is one env_spec.tools entry (spec §3 "ordered list of
// {tool_name, affordances:[{affordance_name, call_code}]}").
type ToolDecl struct {
	ToolName    string       `json:"tool_name" yaml:"tool_name"`
	Affordances []Affordance `json:"affordances" yaml:"affordances"`
}

// EnvSpec is a paradigm's declared tool/affordance environment.
type EnvSpec struct {
	Tools []ToolDecl `json:"tools" yaml:"tools"`
}

// BindAffordances implements MFP steps 1-2: look up each declared tool by
// name on the body, then bind every affordance to a Callable closing over
// its tool instance and method name.
func BindAffordances(env EnvSpec, tools map[string]Invokable) (map[string]Callable, error) {
	functions := make(map[string]Callable)
	for _, decl := range env.Tools {
		tool, ok := tools[decl.ToolName]
		if !ok {
			return nil, fmt.Errorf("composition: tool %q not found on body", decl.ToolName)
		}
		for _, aff := range decl.Affordances {
			method := aff.method()
			boundTool := tool
			functions[aff.Name] = func(kwargs map[string]any, positional []any) (any, error) {
				return boundTool.Invoke(method, kwargs, positional)
			}
		}
	}
	return functions, nil
}

// Step is one sequence_spec.steps entry preceding the final composition
// step (spec §4.4 step 3): invoke an affordance with resolved params,
// binding the resulting callable to ResultKey in the MFP scope.
type Step struct {
	ResultKey  string
	Affordance string
	Params     map[string]any
	Sentinels  map[string]MetaValue // subset of Params keys that are MetaValue sentinels
}

// RunSteps executes sequence_spec.steps in order (MFP §4.4 step 3),
// resolving MetaValue sentinels in each step's params against state, then
// invoking the named affordance to bind a result callable into scope.
// Each step's "invocation" is itself the identity bind of a partially
// applied Callable (kwargs baked in) under ResultKey, ready to be the
// Function of the final composition step or inlined elsewhere.
func RunSteps(steps []Step, functions map[string]Callable, state map[string]any) (map[string]Callable, error) {
	scope := make(map[string]Callable, len(steps))
	for _, step := range steps {
		fn, ok := functions[step.Affordance]
		if !ok {
			return nil, fmt.Errorf("composition: step %q references unknown affordance %q", step.ResultKey, step.Affordance)
		}
		resolvedParams, err := ResolveParams(step.Params, step.Sentinels, state)
		if err != nil {
			return nil, fmt.Errorf("composition: step %q: %w", step.ResultKey, err)
		}
		bound := func(extra map[string]any, positional []any) (any, error) {
			merged := make(map[string]any, len(resolvedParams)+len(extra))
			for k, v := range resolvedParams {
				merged[k] = v
			}
			for k, v := range extra {
				merged[k] = v
			}
			return fn(merged, positional)
		}
		scope[step.ResultKey] = bound
	}
	return scope, nil
}
