package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "endpoints.yml", `
- http:
    api: get /ping
  response: ok
- http:
    method: post
    path: /orders/{id}
    headers:
      X-Env: test
    jsonPath:
      $.amount: 5
  response:
    status: created
    body:
      json: {id: 1}
- graphQL:
    method: post
    operations: [GetUser, GetAccount]
  response:
    template: user
    templateData:
      id: 7
- graphQL:
    query: "query GetOrder { order { id } }"
  response: notFound
`)

	endpoints, err := Load(path)
	require.NoError(t, err)
	require.Len(t, endpoints, 4)

	ping := endpoints[0]
	assert.Equal(t, "GET", ping.Method)
	assert.Equal(t, endpoint.KindREST, ping.Kind())
	assert.Equal(t, response.OK(), ping.Response)
	assert.Equal(t, path+"[0]", ping.Source)

	orders := endpoints[1]
	req := request.New("POST", "/orders/9", []byte(`{"amount":5}`))
	req.Headers.Set("X-Env", "test")
	captures, ok := orders.Match(req)
	require.True(t, ok)
	assert.Equal(t, endpoint.Captures{"id": "9"}, captures)

	user := endpoints[2]
	assert.Equal(t, endpoint.KindGraphQLOperations, user.Kind())
	assert.Equal(t, []string{"GetUser", "GetAccount"}, user.Selector.(*endpoint.OperationsSelector).Operations)
	assert.Equal(t, response.Templated{Status: 200, Template: "user", Overrides: map[string]any{"id": 7}}, user.Response)

	order := endpoints[3]
	assert.Equal(t, "POST", order.Method)
	assert.Equal(t, endpoint.KindGraphQLQuery, order.Kind())
}

func TestLoad_References(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared/a.yml", `{http: {api: get /a}, response: ok}`)
	writeFile(t, dir, "shared/nested/b.yml", `[{http: {api: get /b}, response: ok}]`)
	writeFile(t, dir, "c.json", `[{"http": {"api": "get /c"}, "response": "ok"}]`)
	root := writeFile(t, dir, "root.yml", `
- http:
    api: get /first
  response: ok
- c.json
- "shared/**/*.yml"
- - http:
      api: get /last
    response: ok
`)

	endpoints, err := Load(root)
	require.NoError(t, err)

	var paths []string
	for _, e := range endpoints {
		paths = append(paths, e.String())
	}
	assert.Equal(t, []string{"GET /first", "GET /c", "GET /a", "GET /b", "GET /last"}, paths)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", `{http: {api: get /b}, response: ok}`)
	writeFile(t, dir, "a.yml", `{http: {api: get /a}, response: ok}`)
	writeFile(t, dir, "notes.txt", `not config`)
	writeFile(t, dir, "sub/ignored.yml", `{http: {api: get /ignored}, response: ok}`)

	endpoints, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "GET /a", endpoints[0].String())
	assert.Equal(t, "GET /b", endpoints[1].String())
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("VOODOO_TEST_PATH", "/from-env")
	dir := t.TempDir()
	path := writeFile(t, dir, "env.yml", `
- http: {api: "get ${VOODOO_TEST_PATH}"}
  response: ok
- http: {api: "get ${VOODOO_TEST_UNSET:-/fallback}"}
  response: ok
`)

	endpoints, err := Load(path)
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "GET /from-env", endpoints[0].String())
	assert.Equal(t, "GET /fallback", endpoints[1].String())
}

func TestLoad_Dynamic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dyn.yml", `[{http: {api: get /now}, response: {dynamic: clock}}]`)

	clock := func(context.Context, *request.Request, *cache.Cache) (response.Response, error) {
		return response.OK(), nil
	}
	l := &Loader{Functions: map[string]response.DynamicFunc{"clock": clock}}
	endpoints, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, endpoints, 1)
	dyn, ok := endpoints[0].Response.(response.Dynamic)
	require.True(t, ok)
	assert.Equal(t, "clock", dyn.Name)

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrConfigLoadFailure)
}

func TestLoad_ScriptNamedBySource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "js.yml", `
- http: {api: get /js}
  response:
    javascript: |
      function response(request, cache) { return Response.ok(); }
`)

	endpoints, err := Load(path)
	require.NoError(t, err)
	s, ok := endpoints[0].Response.(response.Scripted)
	require.True(t, ok)
	assert.Equal(t, path+"[0]", s.Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"both operations and query", `[{graphQL: {method: post, operations: A, query: "query A { a }"}, response: ok}]`, "both operations and query"},
		{"neither operations nor query", `[{graphQL: {method: post}, response: ok}]`, "needs operations or query"},
		{"invalid query", `[{graphQL: {query: "query {"}, response: ok}]`, "invalid graphQL query"},
		{"no selector", `[{response: ok}]`, "must declare http or graphQL"},
		{"both selectors", `[{http: {api: get /a}, graphQL: {operations: A}, response: ok}]`, "both http and graphQL"},
		{"no response", `[{http: {api: get /a}}]`, "no response"},
		{"bad api", `[{http: {api: "get"}, response: ok}]`, "must be"},
		{"no method", `[{http: {path: /a}, response: ok}]`, "no method"},
		{"bad status", `[{http: {api: get /a}, response: teapot}]`, "teapot"},
		{"redirect without url", `[{http: {api: get /a}, response: {status: 301}}]`, "requires a url"},
		{"status out of range", `[{http: {api: get /a}, response: {status: 5000}}]`, "out of range"},
		{"missing file", `[missing.yml]`, "file not found"},
		{"unparsable", "- http: [", "parsing file"},
		{"bad where", `[{http: {api: get /a, where: "request >"}, response: ok}]`, "where"},
		{"bad body schema", `[{http: {api: get /a, bodySchema: [1]}, response: ok}]`, "bodySchema must be a mapping"},
		{"scalar item", `[42]`, "unexpected int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yml", tt.content)
			endpoints, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, endpoints)
			assert.ErrorIs(t, err, ErrConfigLoadFailure)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad_IncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yml", `[b.yml]`)
	writeFile(t, dir, "b.yml", `[a.yml]`)

	_, err := Load(filepath.Join(dir, "a.yml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigLoadFailure)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrConfigLoadFailure)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("VOODOO_X", "x")
	assert.Equal(t, "x-y-", ExpandEnvVars("${VOODOO_X}-${VOODOO_NOPE:-y}-${VOODOO_NOPE}"))
	assert.Equal(t, "$HOME stays", ExpandEnvVars("$HOME stays"))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/abs/file.yml", ResolvePath("/base", "/abs/file.yml"))
	assert.Equal(t, filepath.Join("/base", "rel.yml"), ResolvePath("/base", "rel.yml"))
}
