package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPathRule_Match(t *testing.T) {
	tests := []struct {
		name       string
		conditions map[string]any
		body       string
		want       bool
	}{
		{"string field", map[string]any{"$.status": "active"}, `{"status":"active"}`, true},
		{"string mismatch", map[string]any{"$.status": "active"}, `{"status":"inactive"}`, false},
		{"int against float", map[string]any{"$.count": 42}, `{"count":42}`, true},
		{"bool", map[string]any{"$.enabled": false}, `{"enabled":false}`, true},
		{"null", map[string]any{"$.deleted": nil}, `{"deleted":null}`, true},
		{"nested", map[string]any{"$.user.address.city": "Melbourne"}, `{"user":{"address":{"city":"Melbourne"}}}`, true},
		{"array wildcard", map[string]any{"$.items[*].id": "b"}, `{"items":[{"id":"a"},{"id":"b"}]}`, true},
		{"exists", map[string]any{"$.token": map[string]any{"exists": true}}, `{"token":"x"}`, true},
		{"exists missing", map[string]any{"$.token": map[string]any{"exists": true}}, `{}`, false},
		{"not exists", map[string]any{"$.token": map[string]any{"exists": false}}, `{}`, true},
		{"all conditions", map[string]any{"$.a": 1, "$.b": 2}, `{"a":1,"b":3}`, false},
		{"invalid json body", map[string]any{"$.a": 1}, `not json`, false},
		{"no conditions", nil, `not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := CompileJSONPath(tt.conditions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rule.Match([]byte(tt.body)))
		})
	}
}

func TestCompileJSONPath_Invalid(t *testing.T) {
	_, err := CompileJSONPath(map[string]any{"$.[": 1})
	assert.Error(t, err)
}
