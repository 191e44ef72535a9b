package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/resolver"
	"github.com/getmockd/voodoo/pkg/response"
)

var (
	// ErrNoMatchingEndpoint is returned when no REST endpoint accepts a request.
	ErrNoMatchingEndpoint = errors.New("no matching endpoint")

	// ErrNoGraphQLEndpoint is returned when no GraphQL endpoint accepts a request.
	ErrNoGraphQLEndpoint = errors.New("no matching GraphQL endpoint")
)

// Router holds the REST and GraphQL registries.
type Router struct {
	rest     *endpoint.Registry
	graphQL  *endpoint.Registry
	resolver *resolver.Resolver
	log      *slog.Logger
}

// New creates a router resolving responses with res.
func New(res *resolver.Resolver, log *slog.Logger) *Router {
	return &Router{
		rest:     endpoint.NewRegistry(),
		graphQL:  endpoint.NewRegistry(),
		resolver: res,
		log:      logging.OrNop(log),
	}
}

// Add registers e with the registry for its selector kind. Endpoints must
// be added before the router serves requests.
func (r *Router) Add(endpoints ...*endpoint.Endpoint) {
	for _, e := range endpoints {
		if e == nil {
			continue
		}
		if e.Kind().IsGraphQL() {
			r.graphQL.Register(e)
		} else {
			r.rest.Register(e)
		}
	}
}

// REST returns the REST registry.
func (r *Router) REST() *endpoint.Registry { return r.rest }

// GraphQL returns the GraphQL registry.
func (r *Router) GraphQL() *endpoint.Registry { return r.graphQL }

// Resolver returns the response resolver.
func (r *Router) Resolver() *resolver.Resolver { return r.resolver }

// MatchREST reports whether a REST endpoint accepts req without
// producing a response.
func (r *Router) MatchREST(req *request.Request) bool {
	_, _, ok := r.rest.Resolve(req)
	return ok
}

// MatchGraphQL reports whether a GraphQL endpoint accepts req. The body is
// parsed when req.GraphQL is unset; an unparsable body does not match.
func (r *Router) MatchGraphQL(req *request.Request) bool {
	if err := ensureGraphQL(req); err != nil {
		return false
	}
	_, _, ok := r.graphQL.Resolve(req)
	return ok
}

// ServeREST resolves req against the REST endpoints.
func (r *Router) ServeREST(ctx context.Context, req *request.Request) (*response.Outgoing, error) {
	e, captures, ok := r.rest.Resolve(req)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrNoMatchingEndpoint, req.Method, req.Path)
	}
	return r.serve(ctx, e, captures, req)
}

// ServeGraphQL parses req as GraphQL and resolves it against the GraphQL
// endpoints.
func (r *Router) ServeGraphQL(ctx context.Context, req *request.Request) (*response.Outgoing, error) {
	if err := ensureGraphQL(req); err != nil {
		return nil, err
	}
	e, captures, ok := r.graphQL.Resolve(req)
	if !ok {
		return nil, fmt.Errorf("%w: operations %v", ErrNoGraphQLEndpoint, req.GraphQL.OperationNames())
	}
	return r.serve(ctx, e, captures, req)
}

func (r *Router) serve(ctx context.Context, e *endpoint.Endpoint, captures endpoint.Captures, req *request.Request) (*response.Outgoing, error) {
	if len(captures) > 0 {
		params := make(map[string]string, len(captures))
		maps.Copy(params, captures)
		req.PathParams = params
	}

	r.log.Debug("endpoint matched", "method", req.Method, "path", req.Path, "endpoint", e.String(), "source", e.Source)

	out, err := r.resolver.Resolve(ctx, e.Response, req)
	if err != nil {
		r.log.Error("response resolution failed", "endpoint", e.String(), "error", err)
		return nil, err
	}
	return out, nil
}

func ensureGraphQL(req *request.Request) error {
	if req.GraphQL != nil {
		return nil
	}
	gql, err := request.ParseGraphQLRequest(req)
	if err != nil {
		return err
	}
	req.GraphQL = gql
	return nil
}

// StatusFor maps a routing or resolution error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoMatchingEndpoint), errors.Is(err, ErrNoGraphQLEndpoint):
		return http.StatusNotFound
	case errors.Is(err, request.ErrMalformedGraphQL):
		return http.StatusBadRequest
	}
	// Script, template and resolution depth failures.
	return http.StatusInternalServerError
}
