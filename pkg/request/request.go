package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxBodySize is the request body limit used when none is given (10MB).
const DefaultMaxBodySize = 10 << 20

// Request is a transport-independent view of an inbound HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte

	// PathParams holds values captured by the matched path rule.
	PathParams map[string]string

	// GraphQL is set by the GraphQL router once the body has been parsed.
	GraphQL *GraphQL
}

// New creates a request with empty query and header collections.
func New(method, path string, body []byte) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		Path:    path,
		Query:   url.Values{},
		Headers: http.Header{},
		Body:    body,
	}
}

// FromHTTP reads r into a Request. At most maxBody bytes of the body are
// read; a non-positive maxBody means DefaultMaxBodySize.
func FromHTTP(r *http.Request, maxBody int64) (*Request, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		_ = r.Body.Close()
		body = b
	}

	return &Request{
		Method:  strings.ToUpper(r.Method),
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Headers: r.Header.Clone(),
		Body:    body,
	}, nil
}

// Header returns the first value of the named header.
func (r *Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// JSON decodes the body as JSON. Returns nil when the body is empty or not JSON.
func (r *Request) JSON() any {
	if len(r.Body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil
	}
	return v
}

// TemplateData returns the request as plain data for templates, scripts
// and expressions. Headers and query parameters are reduced to their first
// value.
func (r *Request) TemplateData() map[string]any {
	headers := make(map[string]any, len(r.Headers))
	for name, values := range r.Headers {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}

	query := make(map[string]any, len(r.Query))
	for name, values := range r.Query {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	params := make(map[string]any, len(r.PathParams))
	for k, v := range r.PathParams {
		params[k] = v
	}

	data := map[string]any{
		"method":         r.Method,
		"path":           r.Path,
		"headers":        headers,
		"query":          query,
		"body":           string(r.Body),
		"json":           r.JSON(),
		"pathParameters": params,
	}

	if r.GraphQL != nil {
		ops := make(map[string]any, len(r.GraphQL.Operations))
		for name, vars := range r.GraphQL.Operations {
			ops[name] = vars
		}
		data["operations"] = ops
		data["graphQLQuery"] = r.GraphQL.RawQuery
	}

	return data
}
