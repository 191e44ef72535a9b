package endpoint

import (
	"github.com/getmockd/voodoo/pkg/request"
)

// Registry is an ordered collection of endpoints.
//
// A registry is built before serving and only read afterwards; Register
// must not be called concurrently with Resolve.
type Registry struct {
	endpoints []*Endpoint
}

// NewRegistry returns a registry holding endpoints in the given order.
func NewRegistry(endpoints ...*Endpoint) *Registry {
	r := &Registry{}
	for _, e := range endpoints {
		r.Register(e)
	}
	return r
}

// Register appends e. Nil endpoints are ignored.
func (r *Registry) Register(e *Endpoint) {
	if e == nil {
		return
	}
	r.endpoints = append(r.endpoints, e)
}

// Resolve returns the first registered endpoint whose method and selector
// accept req, along with any values the selector captured.
func (r *Registry) Resolve(req *request.Request) (*Endpoint, Captures, bool) {
	for _, e := range r.endpoints {
		if captures, ok := e.Match(req); ok {
			return e, captures, true
		}
	}
	return nil, nil, false
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	return len(r.endpoints)
}

// Endpoints returns a copy of the registered endpoints in order.
func (r *Registry) Endpoints() []*Endpoint {
	out := make([]*Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}
