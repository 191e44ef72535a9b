package matching

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/ohler55/ojg/jp"
)

// JSONPathRule is a compiled set of JSONPath conditions. Every condition
// must hold for the rule to match.
type JSONPathRule struct {
	conditions []jsonPathCondition
}

type jsonPathCondition struct {
	path     string
	expr     jp.Expr
	expected any
}

// CompileJSONPath compiles conditions mapping a JSONPath expression to the
// expected value. An expected value of {"exists": true|false} checks
// presence only.
func CompileJSONPath(conditions map[string]any) (JSONPathRule, error) {
	paths := make([]string, 0, len(conditions))
	for path := range conditions {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	rule := JSONPathRule{conditions: make([]jsonPathCondition, 0, len(paths))}
	for _, path := range paths {
		expr, err := jp.ParseString(path)
		if err != nil {
			return JSONPathRule{}, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
		}
		rule.conditions = append(rule.conditions, jsonPathCondition{
			path:     path,
			expr:     expr,
			expected: conditions[path],
		})
	}
	return rule, nil
}

// IsZero reports whether the rule has no conditions.
func (r JSONPathRule) IsZero() bool {
	return len(r.conditions) == 0
}

// Match evaluates the conditions against a JSON body. A body that is not
// valid JSON never matches.
func (r JSONPathRule) Match(body []byte) bool {
	if r.IsZero() {
		return true
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	for _, c := range r.conditions {
		if !c.match(data) {
			return false
		}
	}
	return true
}

func (c jsonPathCondition) match(data any) bool {
	results := c.expr.Get(data)

	if exists, ok := existenceCheck(c.expected); ok {
		return exists == (len(results) > 0)
	}

	// Wildcard paths may return several results; any equal one matches.
	for _, result := range results {
		if valuesEqual(result, c.expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognises {"exists": bool}.
func existenceCheck(expected any) (exists, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	b, isBool := m["exists"].(bool)
	return b, isBool
}

// valuesEqual compares a decoded JSON value with a declared one. Numbers
// compare by value regardless of their Go type.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	a, aNum := toFloat64(actual)
	e, eNum := toFloat64(expected)
	return aNum && eNum && a == e
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
