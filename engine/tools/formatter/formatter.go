// Package formatter implements the body's formatter_tool (spec §6:
// "formatter_tool.{parse, get, wrap, wrap_list, clean_code,
// create_substitute_function, create_smart_substitute_function,
// collect_script_inputs, create_template_function} — these are the
// affordances paradigms compose; their contracts are as specified in
// §4.7–4.8 and the wrapper codec"). Grounded on engine/wrapper (parse/wrap),
// engine/smarttemplate (the two substitute affordances), and
// engine/llm/orchestrator/response_handler_test.go's extractJSONObject
// (balanced-brace scan, used here by clean_code to recover a fenced LLM
// completion's JSON payload per scenario S2's "stub language model returns
// the JSON {...} wrapped in a fenced code block").
package formatter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/GEOGUANSIN/normCode-sub001/engine/smarttemplate"
	"github.com/GEOGUANSIN/normCode-sub001/engine/wrapper"
)

// Tool is the formatter_tool.
type Tool struct{}

// New builds a Tool. It holds no state: every affordance is a pure function
// over its arguments.
func New() *Tool { return &Tool{} }

// Parse exposes engine/wrapper.Parse as an affordance, returning a plain map
// (type/id/content) so paradigm plans can inspect a wrapped reference's
// shape without depending on engine/wrapper directly, or nil if content
// isn't wrapped (spec §4.1 "is_wrapped(value) → bool").
func (t *Tool) Parse(content string) map[string]any {
	w, ok := wrapper.Parse(content)
	if !ok {
		return nil
	}
	return map[string]any{"type": string(w.Type), "id": w.ID, "content": w.Content}
}

// Get drills into value along a dotted path of dict keys and/or numeric
// list indices (e.g. "answer" or "items.0.name"), the generic extraction
// affordance a composition node uses to pull one field out of a decoded
// structure (e.g. clean_code's parsed JSON). Returns nil if any segment is
// absent, mirroring spec §7's "mid-path key-miss on a dict silently yields
// None".
func (t *Tool) Get(value any, path string) any {
	current := value
	if path == "" {
		return current
	}
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		if idx, err := strconv.Atoi(segment); err == nil {
			list, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(list) {
				return nil
			}
			current = list[idx]
			continue
		}
		dict, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = dict[segment]
	}
	return current
}

// Wrap exposes engine/wrapper.Wrap as an affordance.
func (t *Tool) Wrap(content any, typ string) string {
	return wrapper.Wrap(content, wrapper.Type(typ))
}

// WrapList wraps every element of contents under typ, e.g. producing a
// file_location_list's member wrappers.
func (t *Tool) WrapList(contents []any, typ string) []string {
	out := make([]string, len(contents))
	for i, c := range contents {
		out[i] = wrapper.Wrap(c, wrapper.Type(typ))
	}
	return out
}

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_]*\\s*\\n?(.*?)```")

// CleanCode strips a markdown fenced code block (spec §8 S2 "wrapped in a
// fenced code block") and, if the remaining text parses as JSON, returns the
// decoded value; otherwise it returns the trimmed inner text unchanged. When
// no fence is present, the same JSON-or-trimmed-text handling applies to the
// whole input, using a balanced-brace scan (grounded on
// engine/llm/orchestrator/response_handler_test.go's extractJSONObject) to
// recover a JSON object embedded in surrounding prose.
func (t *Tool) CleanCode(text string) any {
	inner := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		inner = m[1]
	}
	inner = strings.TrimSpace(inner)

	var decoded any
	if err := json.Unmarshal([]byte(inner), &decoded); err == nil {
		return decoded
	}
	if snippet, ok := extractJSONObject(inner); ok {
		var obj any
		if err := json.Unmarshal([]byte(snippet), &obj); err == nil {
			return obj
		}
	}
	return inner
}

// extractJSONObject scans s for the first balanced top-level {...} object,
// ignoring braces that occur inside string literals.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a string literal, braces don't count
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Substitute implements create_substitute_function: a plain $var/${var}
// render with no auto-bundling of unused inputs (the simpler sibling of
// SmartSubstitute, for paradigms that pass exactly the variables their
// template needs).
func (t *Tool) Substitute(tmplText string, vars map[string]any) (string, error) {
	return smarttemplate.Render(tmplText, vars)
}

// SmartSubstitute implements create_smart_substitute_function: the full
// §4.8 contract (bundle unused input_N variables, then render).
func (t *Tool) SmartSubstitute(pool map[string]any, templateKey, combineKey string) (string, error) {
	return smarttemplate.Substitute(pool, templateKey, combineKey)
}

// TemplateRender implements create_template_function: unlike Substitute,
// this executes tmplText as a raw Go text/template (no $name/${name}
// rewriting), for paradigms that want full Go template syntax (loops,
// conditionals) rather than simple variable substitution. See DESIGN.md for
// the rationale distinguishing this from Substitute/SmartSubstitute.
func (t *Tool) TemplateRender(tmplText string, vars map[string]any) (string, error) {
	return smarttemplate.RenderGoTemplate(tmplText, vars)
}

// CollectScriptInputs implements collect_script_inputs: pairs paramNames[i]
// with pool's i-th input_N value (1-indexed), producing the function_params
// dict python_interpreter.function_execute needs (spec §8 S3 "input_1 = 21
// ... passed as script_inputs").
func (t *Tool) CollectScriptInputs(pool map[string]any, paramNames []string) map[string]any {
	out := make(map[string]any, len(paramNames))
	for i, name := range paramNames {
		key := fmt.Sprintf("input_%d", i+1)
		if v, ok := pool[key]; ok {
			out[name] = v
		}
	}
	return out
}

// Invoke implements composition.Invokable, dispatching every affordance
// formatter_tool exposes.
func (t *Tool) Invoke(method string, kwargs map[string]any, positional []any) (any, error) {
	switch method {
	case "parse":
		content := stringArg(kwargs, positional, 0, "content")
		return t.Parse(content), nil
	case "get":
		value := anyArg(kwargs, positional, 0, "value")
		path := stringArg(kwargs, positional, 1, "path")
		return t.Get(value, path), nil
	case "wrap":
		content := anyArg(kwargs, positional, 0, "content")
		typ := stringArg(kwargs, positional, 1, "type")
		return t.Wrap(content, typ), nil
	case "wrap_list":
		contents, _ := anyArg(kwargs, positional, 0, "contents").([]any)
		typ := stringArg(kwargs, positional, 1, "type")
		return t.WrapList(contents, typ), nil
	case "clean_code":
		text := stringArg(kwargs, positional, 0, "text")
		return t.CleanCode(text), nil
	case "create_substitute_function":
		tmplText := stringArg(kwargs, positional, 0, "template")
		vars, _ := anyArg(kwargs, positional, 1, "vars").(map[string]any)
		return t.Substitute(tmplText, vars)
	case "create_smart_substitute_function":
		pool, _ := anyArg(kwargs, positional, 0, "pool").(map[string]any)
		templateKey := stringArgDefault(kwargs, "template_key", "prompt_template")
		combineKey := stringArgDefault(kwargs, "combine_key", "combined_inputs")
		return t.SmartSubstitute(pool, templateKey, combineKey)
	case "create_template_function":
		tmplText := stringArg(kwargs, positional, 0, "template")
		vars, _ := anyArg(kwargs, positional, 1, "vars").(map[string]any)
		return t.TemplateRender(tmplText, vars)
	case "collect_script_inputs":
		pool, _ := anyArg(kwargs, positional, 0, "pool").(map[string]any)
		paramNames := stringSliceArg(kwargs, "param_names")
		return t.CollectScriptInputs(pool, paramNames), nil
	default:
		return nil, fmt.Errorf("formatter: unknown method %q", method)
	}
}

func stringArg(kwargs map[string]any, positional []any, idx int, name string) string {
	s, _ := anyArg(kwargs, positional, idx, name).(string)
	return s
}

func stringArgDefault(kwargs map[string]any, name, def string) string {
	if s, ok := kwargs[name].(string); ok && s != "" {
		return s
	}
	return def
}

func anyArg(kwargs map[string]any, positional []any, idx int, name string) any {
	if v, ok := kwargs[name]; ok {
		return v
	}
	if idx < len(positional) {
		return positional[idx]
	}
	return nil
}

func stringSliceArg(kwargs map[string]any, name string) []string {
	raw, ok := kwargs[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
