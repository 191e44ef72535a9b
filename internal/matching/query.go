package matching

import (
	"net/url"
)

// MatchQuery reports whether params contain every expected parameter.
// An expected value of "*" only requires the parameter to be present.
// Extra parameters in the request are ignored.
func MatchQuery(expected map[string]string, params url.Values) bool {
	for name, want := range expected {
		values, ok := params[name]
		if !ok {
			return false
		}
		if want == "*" {
			continue
		}
		if !containsValue(values, want) {
			return false
		}
	}
	return true
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
