// Package matching provides the request predicates used by REST selectors.
//
// Rules are compiled once when an endpoint is declared and evaluated for
// every request. Each rule answers a plain yes or no; ordering between
// endpoints is decided by declaration order, not by how specific a rule is.
//
//   - Path rules: exact paths, {name} segments, * wildcards and RE2 patterns
//   - Query and header rules: subset checks with optional wildcards
//   - Body rules: equals, contains, regex, and JSONPath conditions
package matching
