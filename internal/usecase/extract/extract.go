// Package extract selects values out of JSON query output with JSONPath expressions.
package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/goccy/go-json"
)

// Rules maps an output name to a JSONPath expression.
type Rules map[string]string

// Result reports how one rule fared.
type Result struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ParseRules reads "name=$.expr" pairs. A bare expression names itself.
func ParseRules(specs []string) (Rules, error) {
	rules := Rules{}
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		name, expr, ok := strings.Cut(spec, "=")
		if !ok || strings.HasPrefix(spec, "$") {
			name, expr = spec, spec
		}
		name, expr = strings.TrimSpace(name), strings.TrimSpace(expr)
		if name == "" {
			return nil, fmt.Errorf("select %q: missing name", spec)
		}
		if _, dup := rules[name]; dup {
			return nil, fmt.Errorf("select %q: duplicate name %q", spec, name)
		}
		rules[name] = expr
	}
	return rules, nil
}

// Apply evaluates every rule against a JSON document.
//
// If the document is not JSON every rule fails. A failing rule is reported in its
// Result and the other rules still run.
func Apply(doc []byte, rules Rules) (map[string]string, []Result) {
	if len(rules) == 0 {
		return map[string]string{}, []Result{}
	}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parsed, err := parseJSON(doc)
	if err != nil {
		out := make([]Result, 0, len(keys))
		for _, name := range keys {
			out = append(out, Result{
				Name:    name,
				Success: false,
				Message: fmt.Sprintf("select %q (%s): document is not valid JSON", name, strings.TrimSpace(rules[name])),
			})
		}
		return map[string]string{}, out
	}

	values := map[string]string{}
	results := make([]Result, 0, len(keys))
	for _, name := range keys {
		expr := strings.TrimSpace(rules[name])
		if expr == "" {
			results = append(results, Result{Name: name, Message: fmt.Sprintf("select %q: empty jsonpath expression", name)})
			continue
		}

		val, getErr := jsonpath.Get(expr, parsed)
		if getErr != nil {
			results = append(results, Result{Name: name, Message: fmt.Sprintf("select %q (%s): jsonpath error: %v", name, expr, getErr)})
			continue
		}
		if isEmptyValue(val) {
			results = append(results, Result{Name: name, Message: fmt.Sprintf("select %q (%s): no value found", name, expr)})
			continue
		}

		s, convErr := toString(val)
		if convErr != nil {
			results = append(results, Result{Name: name, Message: fmt.Sprintf("select %q (%s): cannot convert value to string: %v", name, expr, convErr)})
			continue
		}

		values[name] = s
		results = append(results, Result{Name: name, Success: true, Message: fmt.Sprintf("selected %q", name)})
	}
	return values, results
}

// Select evaluates one expression and returns the raw value.
func Select(doc []byte, expr string) (any, error) {
	parsed, err := parseJSON(doc)
	if err != nil {
		return nil, err
	}
	return jsonpath.Get(strings.TrimSpace(expr), parsed)
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func toString(v any) (string, error) {
	// jsonpath wildcards yield slices; a single hit reads as its element.
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", fmt.Errorf("empty array")
		}
		if len(arr) == 1 {
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
