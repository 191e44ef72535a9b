package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"path"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
	"github.com/getmockd/voodoo/pkg/script"
	"github.com/getmockd/voodoo/pkg/template"
)

// ErrResolutionDepthExceeded is returned when a computed response yields
// another computed response.
var ErrResolutionDepthExceeded = errors.New("response resolution depth exceeded")

// MaxDepth is the number of resolution levels allowed: the declared
// response plus one computed level.
const MaxDepth = 2

// RequestKey is the template data key holding the request.
const RequestKey = "request"

// Resolver produces outgoing responses. It is safe for concurrent use.
type Resolver struct {
	cache     *cache.Cache
	templates *template.Engine
	scripts   *script.Runtime
	fileDir   string
	log       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTemplates sets the engine used for templated responses.
func WithTemplates(e *template.Engine) Option {
	return func(r *Resolver) { r.templates = e }
}

// WithScripts sets the runtime used for scripted responses.
func WithScripts(rt *script.Runtime) Option {
	return func(r *Resolver) { r.scripts = rt }
}

// WithFileDir sets the directory relative file bodies are read from.
func WithFileDir(dir string) Option {
	return func(r *Resolver) { r.fileDir = dir }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = logging.OrNop(log) }
}

// New creates a resolver over the shared cache. A nil cache gets an empty one.
func New(c *cache.Cache, opts ...Option) *Resolver {
	if c == nil {
		c = cache.New(nil)
	}
	r := &Resolver{
		cache: c,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.templates == nil {
		r.templates = template.New()
	}
	if r.scripts == nil {
		r.scripts = script.New(script.WithLogger(r.log))
	}
	return r
}

// Cache returns the shared cache.
func (r *Resolver) Cache() *cache.Cache {
	return r.cache
}

// Templates returns the template engine.
func (r *Resolver) Templates() *template.Engine {
	return r.templates
}

// Resolve produces the outgoing response for resp.
func (r *Resolver) Resolve(ctx context.Context, resp response.Response, req *request.Request) (*response.Outgoing, error) {
	return r.resolve(ctx, resp, req, 1)
}

func (r *Resolver) resolve(ctx context.Context, resp response.Response, req *request.Request, depth int) (*response.Outgoing, error) {
	switch v := resp.(type) {
	case response.Raw:
		r.log.Debug("resolving raw response", "status", v.Status, "depth", depth)
		return r.raw(v)

	case response.Templated:
		r.log.Debug("resolving templated response", "template", v.Template, "depth", depth)
		return r.templated(v, req)

	case response.Dynamic:
		if depth >= MaxDepth {
			return nil, fmt.Errorf("%w: dynamic response %q returned by a computed response", ErrResolutionDepthExceeded, v.Name)
		}
		r.log.Debug("resolving dynamic response", "name", v.Name, "depth", depth)
		if v.Fn == nil {
			return nil, fmt.Errorf("dynamic response %q has no function", v.Name)
		}
		next, err := v.Fn(ctx, req, r.cache)
		if err != nil {
			return nil, fmt.Errorf("dynamic response %q: %w", v.Name, err)
		}
		if next == nil {
			return nil, fmt.Errorf("dynamic response %q returned no response", v.Name)
		}
		return r.resolve(ctx, next, req, depth+1)

	case response.Scripted:
		if depth >= MaxDepth {
			return nil, fmt.Errorf("%w: script %q returned by a computed response", ErrResolutionDepthExceeded, v.Name)
		}
		r.log.Debug("resolving scripted response", "script", v.Name, "depth", depth)
		raw, err := r.scripts.Run(ctx, v, req, r.cache)
		if err != nil {
			return nil, err
		}
		return r.resolve(ctx, raw, req, depth+1)
	}

	return nil, fmt.Errorf("unsupported response type %T", resp)
}

func (r *Resolver) raw(v response.Raw) (*response.Outgoing, error) {
	status, err := outgoingStatus(v.Status)
	if err != nil {
		return nil, err
	}
	body, err := v.Body.Bytes(r.fileDir)
	if err != nil {
		return nil, err
	}

	out := &response.Outgoing{
		Status: status,
		Header: toHeader(v.Headers),
		Body:   body,
	}
	if ct := v.Body.ContentType(); ct != "" && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", ct)
	}
	return out, nil
}

func (r *Resolver) templated(v response.Templated, req *request.Request) (*response.Outgoing, error) {
	status, err := outgoingStatus(v.Status)
	if err != nil {
		return nil, err
	}

	requestData := make(map[string]any, len(req.PathParams)+1)
	for k, val := range req.PathParams {
		requestData[k] = val
	}
	requestData[RequestKey] = req.TemplateData()

	// Override values may themselves hold expressions; they see the cache
	// and the request but not each other.
	overrides, err := r.renderOverrides(v.Overrides, requestData)
	if err != nil {
		return nil, err
	}

	additions := make(map[string]any, len(overrides)+len(requestData))
	maps.Copy(additions, overrides)
	maps.Copy(additions, requestData)

	data := r.cache.Snapshot(additions)
	body, err := r.templates.Render(v.Template, data)
	if err != nil {
		return nil, err
	}

	out := &response.Outgoing{
		Status: status,
		Header: toHeader(v.Headers),
		Body:   []byte(body),
	}
	if out.Header.Get("Content-Type") == "" && len(body) > 0 {
		ct := v.ContentType
		if ct == "" {
			ct = inferTemplateType(v.Template, out.Body)
		}
		out.Header.Set("Content-Type", ct)
	}
	return out, nil
}

func (r *Resolver) renderOverrides(overrides, requestData map[string]any) (map[string]any, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	rendered, err := r.templates.ProcessValue(overrides, r.cache.Snapshot(requestData))
	if err != nil {
		return nil, err
	}
	return rendered.(map[string]any), nil
}

// inferTemplateType picks JSON for .json templates and for output that is
// a JSON object or array, text otherwise.
func inferTemplateType(name string, body []byte) string {
	if path.Ext(name) == ".json" {
		return response.ContentTypeJSON
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return response.ContentTypeJSON
	}
	return response.ContentTypeText
}

// outgoingStatus defaults a zero status to 200 and rejects codes that
// cannot be written.
func outgoingStatus(status int) (int, error) {
	if status == 0 {
		return http.StatusOK, nil
	}
	if !response.ValidStatus(status) {
		return 0, fmt.Errorf("%w: status %d out of range 100-999", response.ErrInvalidDeclaration, status)
	}
	return status, nil
}

func toHeader(headers map[string]string) http.Header {
	h := make(http.Header, len(headers))
	for name, value := range headers {
		h.Set(name, value)
	}
	return h
}
