package response

import (
	"context"
	"maps"
	"net/http"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/request"
)

// Response is the sealed set of response variants.
type Response interface {
	isResponse()
}

// Raw is a response returned exactly as declared.
type Raw struct {
	Status  int
	Headers map[string]string
	Body    Body
}

// DynamicFunc computes a response for a request. It may read and write the
// shared cache.
type DynamicFunc func(ctx context.Context, req *request.Request, c *cache.Cache) (Response, error)

// Dynamic is a response computed by a Go function.
type Dynamic struct {
	// Name identifies the function in logs and config declarations.
	Name string
	Fn   DynamicFunc
}

// Scripted is a response computed by a JavaScript function
// named "response" taking (request, cache).
type Scripted struct {
	// Name identifies the script in errors, usually its config location.
	Name   string
	Source string
}

// Templated is a response whose body is rendered from a named template.
type Templated struct {
	Status  int
	Headers map[string]string

	// Template is the template name, resolved by the template engine.
	Template string

	// Overrides are merged over the shared cache when rendering.
	Overrides map[string]any

	// ContentType overrides the inferred content type of the rendered body.
	ContentType string
}

func (Raw) isResponse()       {}
func (Dynamic) isResponse()   {}
func (Scripted) isResponse()  {}
func (Templated) isResponse() {}

// WithBody returns a copy of r carrying body.
func (r Raw) WithBody(body Body) Raw {
	r.Body = body
	return r
}

// WithHeader returns a copy of r with the header set.
func (r Raw) WithHeader(name, value string) Raw {
	headers := make(map[string]string, len(r.Headers)+1)
	maps.Copy(headers, r.Headers)
	headers[name] = value
	r.Headers = headers
	return r
}

// WithHeaders returns a copy of r with all of headers set.
func (r Raw) WithHeaders(headers map[string]string) Raw {
	if len(headers) == 0 {
		return r
	}
	merged := make(map[string]string, len(r.Headers)+len(headers))
	maps.Copy(merged, r.Headers)
	maps.Copy(merged, headers)
	r.Headers = merged
	return r
}

// StatusName returns the keyword for r's status ("notFound"), or "" when
// the status has no keyword.
func (r Raw) StatusName() string {
	return StatusName(r.Status)
}

// Dyn wraps fn as a Dynamic response.
func Dyn(name string, fn DynamicFunc) Dynamic {
	return Dynamic{Name: name, Fn: fn}
}

// JavaScript wraps source as a Scripted response.
func JavaScript(source string) Scripted {
	return Scripted{Name: "inline", Source: source}
}

// Template returns a 200 Templated response for the named template.
func Template(name string, overrides map[string]any) Templated {
	return Templated{Status: http.StatusOK, Template: name, Overrides: overrides}
}

// Outgoing is a fully resolved response ready for the transport.
type Outgoing struct {
	Status int
	Header http.Header
	Body   []byte
}

// Write copies o onto w.
func (o *Outgoing) Write(w http.ResponseWriter) {
	for name, values := range o.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(o.Status)
	if len(o.Body) > 0 {
		_, _ = w.Write(o.Body)
	}
}
