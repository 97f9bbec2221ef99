package composition

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Condition models a composition node's conditional gate: look up Key in
// the running scope and apply Op (spec §4.4 "is_true"/"is_false").
type Condition struct {
	Key string `json:"key" yaml:"key"`
	Op  string `json:"operator" yaml:"operator"` // "is_true" or "is_false"
}

// Evaluate compiles and runs a tiny boolean CEL expression over scope -
// `Key` for is_true, `!Key` for is_false - so the "apply operator" step
// reuses a real expression evaluator instead of a hand-rolled bool switch.
func (c Condition) Evaluate(scope map[string]any) (bool, error) {
	var expr string
	switch c.Op {
	case "is_true":
		expr = c.Key
	case "is_false":
		expr = "!" + c.Key
	default:
		return false, fmt.Errorf("composition: unknown condition operator %q", c.Op)
	}

	raw := scope[c.Key]
	vars := map[string]any{c.Key: truthyCELValue(raw)}

	env, err := cel.NewEnv(cel.Variable(c.Key, cel.BoolType))
	if err != nil {
		return false, fmt.Errorf("composition: condition env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("composition: condition compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("composition: condition program: %w", err)
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("composition: condition eval %q: %w", expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("composition: condition %q did not evaluate to a bool", expr)
	}
	return b, nil
}

// truthyCELValue normalizes an arbitrary scope value to the bool CEL needs
// for the !key negation form, mirroring Python-ish truthiness: nil, false,
// zero, empty string/slice/map are falsy.
func truthyCELValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) != 0
	case map[string]any:
		return len(t) != 0
	default:
		return true
	}
}
