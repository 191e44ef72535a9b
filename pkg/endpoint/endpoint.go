package endpoint

import (
	"fmt"
	"strings"

	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
)

// Kind identifies the selector variant of an endpoint.
type Kind int

const (
	KindREST Kind = iota
	KindGraphQLOperations
	KindGraphQLQuery
)

func (k Kind) String() string {
	switch k {
	case KindREST:
		return "rest"
	case KindGraphQLOperations:
		return "graphql-operations"
	case KindGraphQLQuery:
		return "graphql-query"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsGraphQL reports whether endpoints of this kind are served by the
// GraphQL router.
func (k Kind) IsGraphQL() bool {
	return k == KindGraphQLOperations || k == KindGraphQLQuery
}

// Captures are values extracted by a selector, such as path parameters.
type Captures map[string]string

// Selector decides whether a request matches an endpoint. Method equality
// is checked by the registry before Match is called.
type Selector interface {
	Kind() Kind
	Match(req *request.Request) (Captures, bool)
}

// Endpoint is a declared (method, selector, response) triple.
type Endpoint struct {
	Method   string
	Selector Selector
	Response response.Response

	// Source records where the endpoint was declared, for diagnostics.
	Source string
}

// New returns an endpoint with the method normalised to upper case.
func New(method string, selector Selector, resp response.Response) *Endpoint {
	return &Endpoint{
		Method:   strings.ToUpper(method),
		Selector: selector,
		Response: resp,
	}
}

// HTTP returns a REST endpoint for method and path. The path accepts
// {name} parameters and * wildcards.
func HTTP(method, path string, resp response.Response, opts ...RESTOption) (*Endpoint, error) {
	sel, err := NewRESTSelector(path, opts...)
	if err != nil {
		return nil, err
	}
	return New(method, sel, resp), nil
}

// MustHTTP is like HTTP but panics on an invalid declaration.
func MustHTTP(method, path string, resp response.Response, opts ...RESTOption) *Endpoint {
	e, err := HTTP(method, path, resp, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// GraphQLOperations returns a GraphQL endpoint matching requests that carry
// every named operation.
func GraphQLOperations(method string, operations []string, resp response.Response) *Endpoint {
	return New(method, NewOperationsSelector(operations...), resp)
}

// GraphQLQuery returns a GraphQL endpoint matching requests accepted by
// predicate.
func GraphQLQuery(method string, predicate func(*request.GraphQL) bool, resp response.Response) *Endpoint {
	return New(method, &QuerySelector{Predicate: predicate}, resp)
}

// Kind returns the kind of the endpoint's selector.
func (e *Endpoint) Kind() Kind {
	return e.Selector.Kind()
}

// Match reports whether e answers req.
func (e *Endpoint) Match(req *request.Request) (Captures, bool) {
	if !strings.EqualFold(e.Method, req.Method) {
		return nil, false
	}
	return e.Selector.Match(req)
}

func (e *Endpoint) String() string {
	return fmt.Sprintf("%s %s", e.Method, e.Selector)
}
