package matching

import (
	"net/http"
	"strings"
)

// MatchHeaders reports whether headers satisfy every expected header.
// Header names are case-insensitive. Values may use * as a prefix, suffix
// or contains wildcard ("Bearer *", "*json", "*token*"); a lone "*" only
// requires the header to be present.
func MatchHeaders(expected map[string]string, headers http.Header) bool {
	for name, pattern := range expected {
		if !MatchHeaderPattern(name, pattern, headers) {
			return false
		}
	}
	return true
}

// MatchHeaderPattern checks one header against a value pattern.
func MatchHeaderPattern(name, pattern string, headers http.Header) bool {
	values := headers.Values(name)
	if len(values) == 0 {
		return false
	}
	actual := values[0]

	switch {
	case pattern == "*":
		return true
	case !strings.Contains(pattern, "*"):
		return actual == pattern
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(actual, strings.Trim(pattern, "*"))
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(actual, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(actual, strings.TrimPrefix(pattern, "*"))
	}
	return actual == pattern
}
