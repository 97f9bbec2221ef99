// Package smarttemplate implements spec §4.8's smart template substitution:
// a paradigm's prompt template is rendered against a pool of `input_N`
// variables, auto-bundling whichever ones the template text doesn't
// explicitly reference into a single combined block so paradigms stay
// agnostic to the exact arity of their auxiliary inputs.
package smarttemplate

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// contentKeys lists the dict keys, in priority order, that make a bundled
// variable's map value render as XML inner text instead of an attribute.
var contentKeys = []string{"content", "data", "text", "body"}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)
var inputKeyPattern = regexp.MustCompile(`^input_(\d+)$`)

// UsedInputs scans tmpl for `$input_N` / `${input_N}` placeholders and
// returns the set of input_N names it explicitly references.
func UsedInputs(tmpl string) map[string]bool {
	used := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if inputKeyPattern.MatchString(name) {
			used[name] = true
		}
	}
	return used
}

// Bundle implements spec §4.8 steps 1-3: it extracts the template text under
// templateKey, finds the input_N variables in pool the template text does
// not reference, and bundles them under combineKey as a single XML-like
// string. It returns the augmented pool ready for Render, and the extracted
// template text.
func Bundle(pool map[string]any, templateKey, combineKey string) (augmented map[string]any, tmplText string, err error) {
	raw, ok := pool[templateKey]
	if !ok {
		return nil, "", fmt.Errorf("smarttemplate: template key %q not present in pool", templateKey)
	}
	tmplText, ok = raw.(string)
	if !ok {
		return nil, "", fmt.Errorf("smarttemplate: template key %q is not a string", templateKey)
	}

	used := UsedInputs(tmplText)

	type unused struct {
		num int
		key string
		val any
	}
	var unusedVars []unused
	for k, v := range pool {
		if k == templateKey || k == combineKey {
			continue
		}
		m := inputKeyPattern.FindStringSubmatch(k)
		if m == nil || used[k] {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		unusedVars = append(unusedVars, unused{num: n, key: k, val: v})
	}
	sort.Slice(unusedVars, func(i, j int) bool { return unusedVars[i].num < unusedVars[j].num })

	augmented = make(map[string]any, len(pool))
	for k, v := range pool {
		if k == templateKey {
			continue
		}
		used2 := false
		for _, u := range unusedVars {
			if u.key == k {
				used2 = true
				break
			}
		}
		if used2 {
			continue
		}
		augmented[k] = v
	}

	if len(unusedVars) > 0 {
		var blocks []string
		for i, u := range unusedVars {
			blocks = append(blocks, renderBlock(fmt.Sprintf("file_%d", i+1), u.val))
		}
		augmented[combineKey] = strings.Join(blocks, "\n")
	}

	return augmented, tmplText, nil
}

// renderBlock renders one bundled variable as an XML-like element: a dict
// value's first matching content key becomes inner text with the remaining
// keys as attributes (self-closing if no content key matches); any other
// value's string form becomes the inner text.
func renderBlock(tag string, value any) string {
	dict, ok := value.(map[string]any)
	if !ok {
		return fmt.Sprintf("<%s>%v</%s>", tag, value, tag)
	}

	contentKey := ""
	for _, ck := range contentKeys {
		if _, ok := dict[ck]; ok {
			contentKey = ck
			break
		}
	}

	var attrKeys []string
	for k := range dict {
		if k != contentKey {
			attrKeys = append(attrKeys, k)
		}
	}
	sort.Strings(attrKeys)

	var attrs strings.Builder
	for _, k := range attrKeys {
		fmt.Fprintf(&attrs, " %s=%q", k, fmt.Sprintf("%v", dict[k]))
	}

	if contentKey == "" {
		return fmt.Sprintf("<%s%s/>", tag, attrs.String())
	}
	return fmt.Sprintf("<%s%s>%v</%s>", tag, attrs.String(), dict[contentKey], tag)
}

// Render substitutes $name/${name} placeholders in tmplText against vars.
// Placeholders are rewritten to Go template map-field accesses and executed
// with sprig's function map available, so paradigm authors may also use
// `{{ upper .input_1 }}`-style calls directly in a template.
func Render(tmplText string, vars map[string]any) (string, error) {
	goTmpl := placeholderPattern.ReplaceAllStringFunc(tmplText, func(m string) string {
		sub := placeholderPattern.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		return fmt.Sprintf("{{.%s}}", name)
	})

	return execute(goTmpl, vars)
}

// RenderGoTemplate executes tmplText as a raw Go text/template (sprig
// functions available, but no $name/${name} rewriting), for callers that
// want full Go template syntax (loops, conditionals) instead of simple
// variable substitution. Used by engine/tools/formatter's
// create_template_function affordance.
func RenderGoTemplate(tmplText string, vars map[string]any) (string, error) {
	return execute(tmplText, vars)
}

func execute(goTmpl string, vars map[string]any) (string, error) {
	t, err := template.New("smarttemplate").Funcs(sprig.TxtFuncMap()).Parse(goTmpl)
	if err != nil {
		return "", fmt.Errorf("smarttemplate: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("smarttemplate: execute: %w", err)
	}
	return buf.String(), nil
}

// Substitute runs the full contract: bundle unused inputs, then render.
func Substitute(pool map[string]any, templateKey, combineKey string) (string, error) {
	augmented, tmplText, err := Bundle(pool, templateKey, combineKey)
	if err != nil {
		return "", err
	}
	return Render(tmplText, augmented)
}
