package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/response"
)

// Endpoint declaration keys.
const (
	keyHTTP     = "http"
	keyGraphQL  = "graphQL"
	keyResponse = "response"
)

// decodeEndpoint builds an endpoint from one declaration mapping.
func decodeEndpoint(decl map[string]any, source string, funcs map[string]response.DynamicFunc) (*endpoint.Endpoint, error) {
	httpDecl, hasHTTP := decl[keyHTTP]
	gqlDecl, hasGraphQL := decl[keyGraphQL]
	switch {
	case hasHTTP && hasGraphQL:
		return nil, errors.New("endpoint declares both http and graphQL")
	case !hasHTTP && !hasGraphQL:
		return nil, fmt.Errorf("endpoint must declare http or graphQL, found keys %v", sortedKeys(decl))
	}

	respDecl, ok := decl[keyResponse]
	if !ok {
		return nil, errors.New("endpoint has no response")
	}
	resp, err := response.FromValue(respDecl, funcs)
	if err != nil {
		return nil, err
	}
	if s, ok := resp.(response.Scripted); ok {
		s.Name = source
		resp = s
	}

	var e *endpoint.Endpoint
	if hasHTTP {
		e, err = decodeHTTP(httpDecl, resp)
	} else {
		e, err = decodeGraphQL(gqlDecl, resp)
	}
	if err != nil {
		return nil, err
	}
	e.Source = source
	return e, nil
}

// decodeHTTP reads a REST selector:
//
//	http:
//	  api: get /users/{id}     # or method: + path: / pathPattern:
//	  query: {verbose: "1"}
//	  headers: {X-Env: test}
//	  body: exact body
//	  bodyContains: text
//	  bodyPattern: regex
//	  jsonPath: {$.id: 7}
//	  where: request.json.amount > 100
func decodeHTTP(v any, resp response.Response) (*endpoint.Endpoint, error) {
	decl, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("http must be a mapping, got %T", v)
	}

	method, _ := decl["method"].(string)
	path, _ := decl["path"].(string)
	if api, ok := decl["api"].(string); ok {
		fields := strings.Fields(api)
		if len(fields) != 2 {
			return nil, fmt.Errorf("api %q must be \"<method> <path>\"", api)
		}
		method, path = fields[0], fields[1]
	}
	if method == "" {
		return nil, errors.New("http endpoint has no method")
	}

	var opts []endpoint.RESTOption
	if pattern, ok := decl["pathPattern"].(string); ok {
		opts = append(opts, endpoint.WithPathPattern(pattern))
	} else if path == "" {
		return nil, errors.New("http endpoint has no path")
	}

	if q, ok := decl["query"]; ok {
		m, err := stringMap("query", q)
		if err != nil {
			return nil, err
		}
		opts = append(opts, endpoint.WithQuery(m))
	}
	if h, ok := decl["headers"]; ok {
		m, err := stringMap("headers", h)
		if err != nil {
			return nil, err
		}
		opts = append(opts, endpoint.WithHeaders(m))
	}
	if s, ok := decl["body"].(string); ok {
		opts = append(opts, endpoint.WithBodyEquals(s))
	}
	if s, ok := decl["bodyContains"].(string); ok {
		opts = append(opts, endpoint.WithBodyContains(s))
	}
	if s, ok := decl["bodyPattern"].(string); ok {
		opts = append(opts, endpoint.WithBodyPattern(s))
	}
	if jp, ok := decl["jsonPath"]; ok {
		m, ok := jp.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("jsonPath must be a mapping, got %T", jp)
		}
		opts = append(opts, endpoint.WithJSONPath(m))
	}
	if schema, ok := decl["bodySchema"]; ok {
		if _, ok := schema.(map[string]any); !ok {
			return nil, fmt.Errorf("bodySchema must be a mapping, got %T", schema)
		}
		opts = append(opts, endpoint.WithBodySchema(schema))
	}
	if s, ok := decl["where"].(string); ok {
		opts = append(opts, endpoint.WithWhere(s))
	}

	return endpoint.HTTP(method, path, resp, opts...)
}

// decodeGraphQL reads a GraphQL selector. Exactly one of operations (a
// name or list of names) or query (a document) must be given.
func decodeGraphQL(v any, resp response.Response) (*endpoint.Endpoint, error) {
	decl, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("graphQL must be a mapping, got %T", v)
	}

	method, _ := decl["method"].(string)
	if method == "" {
		method = "POST"
	}

	ops, hasOps := decl["operations"]
	query, hasQuery := decl["query"]
	switch {
	case hasOps && hasQuery:
		return nil, errors.New("graphQL endpoint declares both operations and query")
	case hasOps:
		names, err := operationNames(ops)
		if err != nil {
			return nil, err
		}
		return endpoint.GraphQLOperations(method, names, resp), nil
	case hasQuery:
		doc, ok := query.(string)
		if !ok || strings.TrimSpace(doc) == "" {
			return nil, errors.New("graphQL query must be a non-empty string")
		}
		sel, err := endpoint.QueryFromDocument(doc)
		if err != nil {
			return nil, err
		}
		return endpoint.New(method, sel, resp), nil
	}
	return nil, errors.New("graphQL endpoint needs operations or query")
}

func operationNames(v any) ([]string, error) {
	switch ops := v.(type) {
	case string:
		if ops == "" {
			return nil, errors.New("graphQL operations must not be empty")
		}
		return []string{ops}, nil
	case []any:
		if len(ops) == 0 {
			return nil, errors.New("graphQL operations must not be empty")
		}
		names := make([]string, 0, len(ops))
		for _, op := range ops {
			name, ok := op.(string)
			if !ok || name == "" {
				return nil, fmt.Errorf("graphQL operation names must be strings, got %v", op)
			}
			names = append(names, name)
		}
		return names, nil
	}
	return nil, fmt.Errorf("graphQL operations must be a string or list, got %T", v)
}

// stringMap converts a mapping of scalars to strings.
func stringMap(field string, v any) (map[string]string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping, got %T", field, v)
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch val.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("%s.%s must be a scalar", field, k)
		}
		out[k] = fmt.Sprint(val)
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
