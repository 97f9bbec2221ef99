package composition

import "fmt"

// InitialInputSentinel is the per-call environment's reserved key carrying
// the raw input vars dict, per spec §4.4 "Starts with a per-call
// environment: {"__initial_input__": vars}".
const InitialInputSentinel = "__initial_input__"

// PositionalParam is the reserved param name that passes its resolved value
// as the sole positional argument instead of a keyword argument.
const PositionalParam = "__positional__"

// Callable is a bound, invocable affordance: kwargs is the resolved named
// parameter dict (literal_params merged in), positional carries the single
// __positional__ argument if the node declared one.
type Callable func(kwargs map[string]any, positional []any) (any, error)

// Node is one composition plan step (spec §4.4 "Composition planner").
type Node struct {
	OutputKey     string            `json:"output_key" yaml:"output_key"`
	Function      string            `json:"function" yaml:"function"` // name looked up in the function scope
	Params        map[string]string `json:"params,omitempty" yaml:"params,omitempty"` // param name -> source name ("__initial_input__" or a prior output_key)
	LiteralParams map[string]any    `json:"literal_params,omitempty" yaml:"literal_params,omitempty"`
	Condition     *Condition        `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Plan is an ordered composition node list plus the scope key whose value
// becomes the composed function's return value.
type Plan struct {
	Nodes     []Node `json:"nodes" yaml:"nodes"`
	ReturnKey string `json:"return_key" yaml:"return_key"`
}

// Compose compiles plan into a single function over the initial vars dict,
// per spec §4.4's composition planner procedure. functions is the MFP scope
// of bound affordance callables, keyed by name.
func Compose(plan Plan, functions map[string]Callable) (func(vars map[string]any) (any, error), error) {
	for _, n := range plan.Nodes {
		if _, ok := functions[n.Function]; !ok {
			return nil, fmt.Errorf("composition: plan references unknown function %q", n.Function)
		}
	}
	return func(vars map[string]any) (any, error) {
		scope := map[string]any{InitialInputSentinel: vars}
		for _, node := range plan.Nodes {
			if node.Condition != nil {
				ok, err := node.Condition.Evaluate(scope)
				if err != nil {
					return nil, fmt.Errorf("composition: node %q condition: %w", node.OutputKey, err)
				}
				if !ok {
					continue
				}
			}

			kwargs := map[string]any{}
			var positional []any
			for paramName, source := range node.Params {
				val, err := resolveSource(source, scope)
				if err != nil {
					return nil, fmt.Errorf("composition: node %q param %q: %w", node.OutputKey, paramName, err)
				}
				if paramName == PositionalParam {
					positional = append(positional, val)
					continue
				}
				kwargs[paramName] = val
			}
			for k, v := range node.LiteralParams {
				kwargs[k] = v
			}

			fn := functions[node.Function]
			result, err := fn(kwargs, positional)
			if err != nil {
				return nil, fmt.Errorf("composition: node %q (%s) failed: %w", node.OutputKey, node.Function, err)
			}
			scope[node.OutputKey] = result
		}

		result, ok := scope[plan.ReturnKey]
		if !ok {
			return nil, fmt.Errorf("composition: return key %q was never set", plan.ReturnKey)
		}
		return result, nil
	}, nil
}

func resolveSource(source string, scope map[string]any) (any, error) {
	if source == InitialInputSentinel {
		return scope[InitialInputSentinel], nil
	}
	val, ok := scope[source]
	if !ok {
		return nil, fmt.Errorf("unbound name %q", source)
	}
	return val, nil
}
