package matching

import (
	"bytes"
	"fmt"
	"regexp"
)

// BodyRule matches raw request bodies. Empty fields are not checked.
type BodyRule struct {
	Equals   string
	Contains string
	Pattern  *regexp.Regexp
}

// CompileBodyRule builds a BodyRule. pattern is an RE2 expression.
func CompileBodyRule(equals, contains, pattern string) (BodyRule, error) {
	rule := BodyRule{Equals: equals, Contains: contains}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return BodyRule{}, fmt.Errorf("invalid body pattern %q: %w", pattern, err)
		}
		rule.Pattern = re
	}
	return rule, nil
}

// IsZero reports whether the rule checks nothing.
func (b BodyRule) IsZero() bool {
	return b.Equals == "" && b.Contains == "" && b.Pattern == nil
}

// Match reports whether body satisfies every configured check.
func (b BodyRule) Match(body []byte) bool {
	if b.Equals != "" && string(body) != b.Equals {
		return false
	}
	if b.Contains != "" && !bytes.Contains(body, []byte(b.Contains)) {
		return false
	}
	if b.Pattern != nil && !b.Pattern.Match(body) {
		return false
	}
	return true
}
