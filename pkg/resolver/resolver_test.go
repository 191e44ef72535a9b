package resolver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
	"github.com/getmockd/voodoo/pkg/script"
	"github.com/getmockd/voodoo/pkg/template"
)

func TestResolve_Raw(t *testing.T) {
	r := New(nil)
	ctx := context.Background()
	req := request.New("GET", "/", nil)

	tests := []struct {
		name     string
		resp     response.Response
		status   int
		ct       string
		body     string
		location string
	}{
		{"ok empty", response.OK(), 200, "", "", ""},
		{"not found", response.NotFound(), 404, "", "", ""},
		{"text", response.OK().WithBody(response.Text("pong")), 200, response.ContentTypeText, "pong", ""},
		{"json", response.Created().WithBody(response.JSON(map[string]any{"id": 1})), 201, response.ContentTypeJSON, `{"id":1}`, ""},
		{"explicit content type", response.OK().WithHeader("Content-Type", "application/xml").WithBody(response.Text("<a/>")), 200, "application/xml", "<a/>", ""},
		{"redirect", response.MovedPermanently("http://x"), 301, "", "", "http://x"},
		{"zero status", response.Raw{}, 200, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Resolve(ctx, tt.resp, req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.ct, out.Header.Get("Content-Type"))
			assert.Equal(t, tt.body, string(out.Body))
			assert.Equal(t, tt.location, out.Header.Get("Location"))
		})
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"a":1}`), 0o600))

	r := New(nil, WithFileDir(dir))
	out, err := r.Resolve(context.Background(), response.OK().WithBody(response.File("data.json")), request.New("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out.Body))
	assert.Equal(t, "application/json", out.Header.Get("Content-Type"))

	_, err = r.Resolve(context.Background(), response.OK().WithBody(response.File("missing.txt")), request.New("GET", "/", nil))
	assert.Error(t, err)
}

func TestResolve_Dynamic(t *testing.T) {
	c := cache.New(nil)
	r := New(c)

	resp := response.Dyn("counter", func(_ context.Context, req *request.Request, c *cache.Cache) (response.Response, error) {
		c.Set("last", req.Path)
		return response.Accepted().WithBody(response.Text(req.Method)), nil
	})

	out, err := r.Resolve(context.Background(), resp, request.New("post", "/jobs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, out.Status)
	assert.Equal(t, "POST", string(out.Body))

	last, ok := c.Get("last")
	require.True(t, ok)
	assert.Equal(t, "/jobs", last)
}

func TestResolve_DynamicReturnsTemplate(t *testing.T) {
	engine := template.New()
	engine.Register("greeting", "hello {{name}}")
	r := New(cache.New(map[string]any{"name": "cache"}), WithTemplates(engine))

	resp := response.Dyn("greet", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return response.Template("greeting", map[string]any{"name": "dynamic"}), nil
	})

	out, err := r.Resolve(context.Background(), resp, request.New("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "hello dynamic", string(out.Body))
}

func TestResolve_DepthExceeded(t *testing.T) {
	r := New(nil)
	inner := response.Dyn("inner", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return response.OK(), nil
	})
	outer := response.Dyn("outer", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return inner, nil
	})

	_, err := r.Resolve(context.Background(), outer, request.New("GET", "/", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolutionDepthExceeded)

	toScript := response.Dyn("to-script", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return response.JavaScript(`function response() { return Response.ok(); }`), nil
	})
	_, err = r.Resolve(context.Background(), toScript, request.New("GET", "/", nil))
	assert.ErrorIs(t, err, ErrResolutionDepthExceeded)
}

func TestResolve_DynamicError(t *testing.T) {
	r := New(nil)
	boom := errors.New("boom")
	resp := response.Dyn("fails", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return nil, boom
	})

	_, err := r.Resolve(context.Background(), resp, request.New("GET", "/", nil))
	assert.ErrorIs(t, err, boom)

	_, err = r.Resolve(context.Background(), response.Dynamic{Name: "empty"}, request.New("GET", "/", nil))
	assert.Error(t, err)
}

func TestResolve_Scripted(t *testing.T) {
	c := cache.New(nil)
	r := New(c, WithScripts(script.New()))

	resp := response.JavaScript(`function response(request, cache) {
		cache.seen = request.path;
		return Response.ok({path: request.path});
	}`)

	out, err := r.Resolve(context.Background(), resp, request.New("GET", "/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, out.Status)
	assert.JSONEq(t, `{"path":"/orders"}`, string(out.Body))
	assert.Equal(t, response.ContentTypeJSON, out.Header.Get("Content-Type"))

	seen, _ := c.Get("seen")
	assert.Equal(t, "/orders", seen)
}

func TestResolve_ScriptThrows(t *testing.T) {
	r := New(nil)
	out, err := r.Resolve(context.Background(), response.JavaScript(`function response() { throw new Error("nope"); }`), request.New("GET", "/", nil))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, script.ErrScriptExecution)
}

func TestResolve_TemplatedPrecedence(t *testing.T) {
	engine := template.New()
	engine.Register("user.json", `{"id":"{{id}}","name":"{{name}}","server":"{{mockServer}}","ua":"{{request.headers.User-Agent}}"}`)

	c := cache.New(map[string]any{
		"id":         "from-cache",
		"name":       "cache-name",
		"mockServer": "http://127.0.0.1:8080",
	})
	r := New(c, WithTemplates(engine))

	req := request.New("GET", "/users/42", nil)
	req.PathParams = map[string]string{"id": "42"}
	req.Headers.Set("User-Agent", "test")

	resp := response.Templated{
		Status:    http.StatusCreated,
		Template:  "user.json",
		Overrides: map[string]any{"id": "override", "name": "override-name"},
	}

	out, err := r.Resolve(context.Background(), resp, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, out.Status)
	assert.JSONEq(t, `{"id":"42","name":"override-name","server":"http://127.0.0.1:8080","ua":"test"}`, string(out.Body))
	assert.Equal(t, response.ContentTypeJSON, out.Header.Get("Content-Type"))

	// The shared cache is not changed by rendering.
	id, _ := c.Get("id")
	assert.Equal(t, "from-cache", id)
	assert.Equal(t, 3, c.Len())
}

func TestResolve_TemplatedContentType(t *testing.T) {
	engine := template.New()
	engine.Register("text", "plain {{v}}")
	engine.Register("object", `{"v": "{{v}}"}`)
	r := New(cache.New(map[string]any{"v": "x"}), WithTemplates(engine))
	req := request.New("GET", "/", nil)

	out, err := r.Resolve(context.Background(), response.Template("text", nil), req)
	require.NoError(t, err)
	assert.Equal(t, response.ContentTypeText, out.Header.Get("Content-Type"))

	out, err = r.Resolve(context.Background(), response.Template("object", nil), req)
	require.NoError(t, err)
	assert.Equal(t, response.ContentTypeJSON, out.Header.Get("Content-Type"))

	declared := response.Template("text", nil)
	declared.ContentType = "text/csv"
	out, err = r.Resolve(context.Background(), declared, req)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", out.Header.Get("Content-Type"))
}

func TestResolve_TemplateErrors(t *testing.T) {
	engine := template.New()
	engine.Register("needs-id", "{{id}}")
	r := New(nil, WithTemplates(engine))
	req := request.New("GET", "/", nil)

	_, err := r.Resolve(context.Background(), response.Template("missing", nil), req)
	assert.ErrorIs(t, err, template.ErrTemplateRender)

	_, err = r.Resolve(context.Background(), response.Template("needs-id", nil), req)
	assert.ErrorIs(t, err, template.ErrTemplateRender)
}

func TestResolve_TemplatedOverrideExpressions(t *testing.T) {
	engine := template.New()
	engine.Register("order.json", `{"id":"{{id}}","owner":"{{owner}}","tags":"{{tags}}"}`)
	r := New(cache.New(map[string]any{"user": "alice"}), WithTemplates(engine))

	req := request.New("GET", "/orders/7", nil)
	req.PathParams = map[string]string{"id": "7"}

	tests := []struct {
		name      string
		overrides map[string]any
		want      string
	}{
		{"literal", map[string]any{"owner": "bob", "tags": "none"}, `{"id":"7","owner":"bob","tags":"none"}`},
		{"from cache", map[string]any{"owner": "{{user}}", "tags": "none"}, `{"id":"7","owner":"alice","tags":"none"}`},
		{"from request", map[string]any{"owner": "{{request.path}}", "tags": "order-{{id}}"}, `{"id":"7","owner":"/orders/7","tags":"order-7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Resolve(context.Background(), response.Template("order.json", tt.overrides), req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out.Body))
		})
	}

	_, err := r.Resolve(context.Background(), response.Template("order.json", map[string]any{"owner": "{{missing}}"}), req)
	assert.ErrorIs(t, err, template.ErrTemplateRender)
}

func TestResolve_StatusOutOfRange(t *testing.T) {
	engine := template.New()
	engine.Register("t", "x")
	r := New(nil, WithTemplates(engine), WithScripts(script.New()))
	req := request.New("GET", "/", nil)

	tests := []struct {
		name string
		resp response.Response
	}{
		{"raw below range", response.Status(42)},
		{"raw above range", response.Status(5000)},
		{"negative", response.Status(-1)},
		{"templated", response.Templated{Status: 1000, Template: "t"}},
		{"dynamic", response.Dyn("bad", func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
			return response.Status(99), nil
		})},
		{"script", response.JavaScript(`function response() { return {status: 42}; }`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Resolve(context.Background(), tt.resp, req)
			require.Error(t, err)
			assert.Nil(t, out)
		})
	}
}
