package endpoint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/getmockd/voodoo/pkg/request"
)

// OperationsSelector matches GraphQL requests that carry at least the
// declared operations. Extra operations in the request are allowed.
type OperationsSelector struct {
	Operations []string
}

// NewOperationsSelector returns a selector requiring every named operation.
func NewOperationsSelector(operations ...string) *OperationsSelector {
	return &OperationsSelector{Operations: operations}
}

// Kind implements Selector.
func (s *OperationsSelector) Kind() Kind { return KindGraphQLOperations }

// Match implements Selector. Requests without a parsed GraphQL body never
// match.
func (s *OperationsSelector) Match(req *request.Request) (Captures, bool) {
	if req.GraphQL == nil {
		return nil, false
	}
	for _, name := range s.Operations {
		if !req.GraphQL.Has(name) {
			return nil, false
		}
	}
	return Captures{}, true
}

func (s *OperationsSelector) String() string {
	return "operations[" + strings.Join(s.Operations, ",") + "]"
}

// QuerySelector matches GraphQL requests accepted by an arbitrary predicate
// over the parsed request.
type QuerySelector struct {
	Predicate func(*request.GraphQL) bool

	// Query is the declared document when the predicate was built by
	// QueryFromDocument.
	Query string
}

// Kind implements Selector.
func (s *QuerySelector) Kind() Kind { return KindGraphQLQuery }

// Match implements Selector.
func (s *QuerySelector) Match(req *request.Request) (Captures, bool) {
	if req.GraphQL == nil || s.Predicate == nil {
		return nil, false
	}
	if !s.Predicate(req.GraphQL) {
		return nil, false
	}
	return Captures{}, true
}

func (s *QuerySelector) String() string {
	if s.Query != "" {
		return "query"
	}
	return "predicate"
}

// QueryFromDocument compiles a query document into a selector. A request
// matches when its documents contain every operation of the declared
// document with the same text after normalisation, so whitespace and
// comments do not matter.
func QueryFromDocument(query string) (*QuerySelector, error) {
	declared, err := normalizeOperations(query)
	if err != nil {
		return nil, err
	}
	if len(declared) == 0 {
		return nil, fmt.Errorf("graphQL query declares no operations")
	}

	predicate := func(gql *request.GraphQL) bool {
		present := make(map[string]bool)
		for _, q := range gql.Queries {
			ops, err := normalizeOperations(q)
			if err != nil {
				continue
			}
			for _, op := range ops {
				present[op] = true
			}
		}
		for _, op := range declared {
			if !present[op] {
				return false
			}
		}
		return true
	}

	return &QuerySelector{Predicate: predicate, Query: query}, nil
}

// normalizeOperations parses a document and formats each operation on its
// own, in a canonical layout.
func normalizeOperations(query string) ([]string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return nil, fmt.Errorf("invalid graphQL query: %w", err)
	}

	ops := make([]string, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		var sb strings.Builder
		formatter.NewFormatter(&sb).FormatQueryDocument(&ast.QueryDocument{
			Operations: ast.OperationList{op},
		})
		ops = append(ops, strings.TrimSpace(sb.String()))
	}
	sort.Strings(ops)
	return ops, nil
}
