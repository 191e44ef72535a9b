package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/resolver"
	"github.com/getmockd/voodoo/pkg/response"
	"github.com/getmockd/voodoo/pkg/script"
	"github.com/getmockd/voodoo/pkg/template"
)

func newRouter(t *testing.T) *Router {
	t.Helper()
	engine := template.New()
	engine.Register("user.tmpl", `{"id":"{{request.operations.GetUser.id}}","name":"{{name}}"}`)

	res := resolver.New(cache.New(map[string]any{"name": "Fred"}), resolver.WithTemplates(engine))
	r := New(res, nil)
	r.Add(
		endpoint.MustHTTP("GET", "/ping", response.OK()),
		endpoint.GraphQLOperations("POST", []string{"GetUser"}, response.Template("user.tmpl", nil)),
		endpoint.MustHTTP("GET", "/boom", response.JavaScript(`function response() { throw new Error("boom"); }`)),
		endpoint.MustHTTP("GET", "/users/{id}", response.Dyn("user", func(_ context.Context, req *request.Request, _ *cache.Cache) (response.Response, error) {
			return response.OK().WithBody(response.Text("user " + req.PathParams["id"])), nil
		})),
	)
	return r
}

func TestRouter_EndToEnd(t *testing.T) {
	r := newRouter(t)
	ctx := context.Background()

	assert.Equal(t, 3, r.REST().Len())
	assert.Equal(t, 1, r.GraphQL().Len())

	t.Run("ping", func(t *testing.T) {
		out, err := r.ServeREST(ctx, request.New("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, out.Status)
		assert.Empty(t, out.Body)
	})

	t.Run("GetUser", func(t *testing.T) {
		req := request.New("POST", "/graphql", []byte(`{"query":"query GetUser { id }","variables":{"id":"7"}}`))
		out, err := r.ServeGraphQL(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, out.Status)
		assert.JSONEq(t, `{"id":"7","name":"Fred"}`, string(out.Body))
	})

	t.Run("GetOrder", func(t *testing.T) {
		req := request.New("POST", "/graphql", []byte(`{"query":"query GetOrder { id }"}`))
		out, err := r.ServeGraphQL(ctx, req)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrNoGraphQLEndpoint)
		assert.Equal(t, http.StatusNotFound, StatusFor(err))
	})

	t.Run("path parameters", func(t *testing.T) {
		out, err := r.ServeREST(ctx, request.New("GET", "/users/9", nil))
		require.NoError(t, err)
		assert.Equal(t, "user 9", string(out.Body))
	})

	t.Run("no REST endpoint", func(t *testing.T) {
		_, err := r.ServeREST(ctx, request.New("GET", "/nothing", nil))
		assert.ErrorIs(t, err, ErrNoMatchingEndpoint)
	})
}

func TestRouter_ScriptThrowsNeverOK(t *testing.T) {
	r := newRouter(t)
	out, err := r.ServeREST(context.Background(), request.New("GET", "/boom", nil))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, script.ErrScriptExecution)
	assert.Equal(t, http.StatusInternalServerError, StatusFor(err))
}

func TestRouter_MalformedGraphQL(t *testing.T) {
	r := newRouter(t)
	_, err := r.ServeGraphQL(context.Background(), request.New("POST", "/graphql", []byte(`not json`)))
	require.Error(t, err)
	assert.ErrorIs(t, err, request.ErrMalformedGraphQL)
	assert.Equal(t, http.StatusBadRequest, StatusFor(err))
}

func TestRouter_KindsAreSeparate(t *testing.T) {
	r := newRouter(t)

	// A GraphQL endpoint is never considered for REST traffic.
	assert.False(t, r.MatchREST(request.New("POST", "/graphql", []byte(`{"query":"query GetUser { id }"}`))))
	assert.True(t, r.MatchGraphQL(request.New("POST", "/graphql", []byte(`{"query":"query GetUser { id }"}`))))
	assert.False(t, r.MatchGraphQL(request.New("POST", "/graphql", []byte(`{`))))

	assert.True(t, r.MatchREST(request.New("GET", "/ping", nil)))
	assert.False(t, r.MatchREST(request.New("GET", "/pong", nil)))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("wrapped: %w", ErrNoMatchingEndpoint), http.StatusNotFound},
		{ErrNoGraphQLEndpoint, http.StatusNotFound},
		{request.ErrMalformedGraphQL, http.StatusBadRequest},
		{template.ErrTemplateRender, http.StatusInternalServerError},
		{resolver.ErrResolutionDepthExceeded, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "%v", tt.err)
	}
}
