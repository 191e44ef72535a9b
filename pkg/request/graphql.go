package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ErrMalformedGraphQL is returned when a body cannot be read as a GraphQL request.
var ErrMalformedGraphQL = errors.New("malformed GraphQL request")

// MalformedGraphQLError describes why a GraphQL request was rejected.
type MalformedGraphQLError struct {
	Reason string
	Err    error
}

func (e *MalformedGraphQLError) Error() string {
	if e.Err != nil {
		return ErrMalformedGraphQL.Error() + ": " + e.Reason + ": " + e.Err.Error()
	}
	return ErrMalformedGraphQL.Error() + ": " + e.Reason
}

// Unwrap exposes both ErrMalformedGraphQL and the underlying cause.
func (e *MalformedGraphQLError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedGraphQL}
	}
	return []error{ErrMalformedGraphQL, e.Err}
}

func malformed(reason string, err error) error {
	return &MalformedGraphQLError{Reason: reason, Err: err}
}

// GraphQL is the structural view of a GraphQL request used for matching.
type GraphQL struct {
	// Operations maps each operation name to the variables sent with it.
	Operations map[string]map[string]any

	// Queries holds the query documents in request order (one per batch item).
	Queries []string

	// RawQuery is the query text, batch items separated by newlines.
	RawQuery string
}

// Has reports whether the request carries the named operation.
func (g *GraphQL) Has(name string) bool {
	_, ok := g.Operations[name]
	return ok
}

// OperationNames returns the operation names in sorted order.
func (g *GraphQL) OperationNames() []string {
	names := make([]string, 0, len(g.Operations))
	for name := range g.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variables returns the variables sent with the named operation.
func (g *GraphQL) Variables(operation string) map[string]any {
	return g.Operations[operation]
}

type graphQLPayload struct {
	Query         *string        `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// ParseGraphQL parses a JSON GraphQL body. Both a single
// {query, operationName?, variables?} object and a batch array of them
// are accepted.
func ParseGraphQL(body []byte) (*GraphQL, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, malformed("empty request body", nil)
	}

	var payloads []graphQLPayload
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, malformed("invalid JSON request body", err)
		}
		if len(payloads) == 0 {
			return nil, malformed("empty batch", nil)
		}
	} else {
		var p graphQLPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, malformed("invalid JSON request body", err)
		}
		payloads = []graphQLPayload{p}
	}

	gql := &GraphQL{Operations: make(map[string]map[string]any)}
	for _, p := range payloads {
		if p.Query == nil {
			return nil, malformed("missing query field", nil)
		}
		gql.add(*p.Query, p.OperationName, p.Variables)
	}
	gql.RawQuery = strings.Join(gql.Queries, "\n")
	return gql, nil
}

// ParseGraphQLDocument builds a GraphQL value from a bare query document,
// as sent with Content-Type application/graphql.
func ParseGraphQLDocument(query, operationName string, variables map[string]any) *GraphQL {
	gql := &GraphQL{Operations: make(map[string]map[string]any)}
	gql.add(query, operationName, variables)
	gql.RawQuery = query
	return gql
}

// ParseGraphQLRequest parses r according to its method and content type.
// GET requests read query, operationName and variables from the URL;
// application/graphql bodies are taken as the query document; anything
// else is parsed as JSON.
func ParseGraphQLRequest(r *Request) (*GraphQL, error) {
	if r.Method == http.MethodGet {
		query := r.Query.Get("query")
		if query == "" {
			return nil, malformed("missing query parameter", nil)
		}
		var vars map[string]any
		if raw := r.Query.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &vars); err != nil {
				return nil, malformed("invalid variables JSON", err)
			}
		}
		return ParseGraphQLDocument(query, r.Query.Get("operationName"), vars), nil
	}

	if strings.HasPrefix(r.Header("Content-Type"), "application/graphql") {
		if len(bytes.TrimSpace(r.Body)) == 0 {
			return nil, malformed("empty request body", nil)
		}
		return ParseGraphQLDocument(string(r.Body), "", nil), nil
	}

	return ParseGraphQL(r.Body)
}

func (g *GraphQL) add(query, operationName string, variables map[string]any) {
	g.Queries = append(g.Queries, query)

	name := operationName
	if name == "" {
		name = OperationName(query)
	}
	if name == "" {
		return
	}
	if variables == nil {
		variables = map[string]any{}
	}
	g.Operations[name] = variables
}

// operationPattern finds the first named operation when the document does
// not parse.
var operationPattern = regexp.MustCompile(`(?:^|[^_0-9A-Za-z])(?:query|mutation|subscription)\s+([_A-Za-z][_0-9A-Za-z]*)`)

// OperationName returns the first named operation declared in a query
// document, or "" when there is none. Later operations in the same
// document are ignored; clients select them with operationName.
// Documents that fail to parse fall back to a lexical scan.
func OperationName(query string) string {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err == nil && doc != nil {
		for _, op := range doc.Operations {
			if op.Name != "" {
				return op.Name
			}
		}
		return ""
	}

	if m := operationPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}
