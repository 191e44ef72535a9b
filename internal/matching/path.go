package matching

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type pathKind int

const (
	pathExact pathKind = iota
	pathSegments
	pathWildcard
	pathRegex
)

// PathRule is a compiled path matcher.
type PathRule struct {
	pattern  string
	kind     pathKind
	segments []string
	regex    *regexp.Regexp
}

// CompilePath compiles a path pattern:
//   - "/api/users" matches only itself
//   - "/api/users/{id}" matches any single segment for {id}
//   - "/api/users/*" matches "/api/users" and anything below it
//   - "/api/*/items" matches any characters in place of *
func CompilePath(pattern string) PathRule {
	rule := PathRule{pattern: pattern, kind: pathExact}
	switch {
	case strings.Contains(pattern, "{") && strings.Contains(pattern, "}"):
		rule.kind = pathSegments
		rule.segments = splitPath(pattern)
	case strings.Contains(pattern, "*"):
		rule.kind = pathWildcard
		rule.segments = splitPath(pattern)
	}
	return rule
}

// CompilePathPattern compiles an RE2 regular expression path rule.
// Named capture groups become path parameters.
func CompilePathPattern(expr string) (PathRule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return PathRule{}, fmt.Errorf("invalid path pattern %q: %w", expr, err)
	}
	return PathRule{pattern: expr, kind: pathRegex, regex: re}, nil
}

// String returns the source pattern.
func (p PathRule) String() string {
	return p.pattern
}

// Match reports whether path satisfies the rule and returns captured
// parameters. Wildcards are captured as "0", "1", ... in order.
func (p PathRule) Match(path string) (map[string]string, bool) {
	switch p.kind {
	case pathExact:
		return nil, p.pattern == path
	case pathSegments:
		return matchSegments(p.segments, splitPath(path))
	case pathWildcard:
		if !matchWildcard(p.pattern, path) {
			return nil, false
		}
		return wildcardCaptures(p.segments, splitPath(path)), true
	case pathRegex:
		m := p.regex.FindStringSubmatch(path)
		if m == nil {
			return nil, false
		}
		captures := make(map[string]string)
		for i, name := range p.regex.SubexpNames() {
			if i > 0 && name != "" {
				captures[name] = m[i]
			}
		}
		return captures, true
	}
	return nil, false
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// matchSegments matches {name} segments one for one. A "*" segment
// matches any single segment.
func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	params := make(map[string]string)
	wildcard := 0
	for i, part := range pattern {
		switch {
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			params[part[1:len(part)-1]] = path[i]
		case part == "*":
			params[strconv.Itoa(wildcard)] = path[i]
			wildcard++
		case part != path[i]:
			return nil, false
		}
	}
	return params, true
}

// matchWildcard performs simple wildcard matching; * matches any sequence
// of characters. A trailing "/*" also matches the bare prefix.
func matchWildcard(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok && !strings.Contains(prefix, "*") {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}

	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			if !strings.HasPrefix(path, part) {
				return false
			}
			pos = len(part)
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}

	// The pattern must consume the whole path unless it ends with a wildcard.
	last := parts[len(parts)-1]
	return last == "" || strings.HasSuffix(path, last)
}

// wildcardCaptures extracts the values of * segments. A trailing * captures
// the rest of the path.
func wildcardCaptures(pattern, path []string) map[string]string {
	captures := make(map[string]string)
	wildcard := 0
	for i, part := range pattern {
		if i >= len(path) {
			break
		}
		if part != "*" {
			continue
		}
		key := strconv.Itoa(wildcard)
		if i == len(pattern)-1 {
			captures[key] = strings.Join(path[i:], "/")
		} else {
			captures[key] = path[i]
		}
		wildcard++
	}
	return captures
}
