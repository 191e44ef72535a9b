package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
)

func TestRESTSelector_Match(t *testing.T) {
	newReq := func(path, body string, mutate func(*request.Request)) *request.Request {
		req := request.New("POST", path, []byte(body))
		if mutate != nil {
			mutate(req)
		}
		return req
	}

	tests := []struct {
		name string
		path string
		opts []RESTOption
		req  *request.Request
		want bool
	}{
		{
			name: "path only",
			path: "/orders",
			req:  newReq("/orders", "", nil),
			want: true,
		},
		{
			name: "query subset",
			path: "/orders",
			opts: []RESTOption{WithQuery(map[string]string{"status": "open"})},
			req: newReq("/orders", "", func(r *request.Request) {
				r.Query.Set("status", "open")
				r.Query.Set("page", "2")
			}),
			want: true,
		},
		{
			name: "query missing",
			path: "/orders",
			opts: []RESTOption{WithQuery(map[string]string{"status": "open"})},
			req:  newReq("/orders", "", nil),
			want: false,
		},
		{
			name: "header",
			path: "/orders",
			opts: []RESTOption{WithHeaders(map[string]string{"Authorization": "Bearer *"})},
			req: newReq("/orders", "", func(r *request.Request) {
				r.Headers.Set("Authorization", "Bearer t0k3n")
			}),
			want: true,
		},
		{
			name: "body contains",
			path: "/orders",
			opts: []RESTOption{WithBodyContains(`"sku"`)},
			req:  newReq("/orders", `{"sku":"A1"}`, nil),
			want: true,
		},
		{
			name: "json path",
			path: "/orders",
			opts: []RESTOption{WithJSONPath(map[string]any{"$.sku": "A1"})},
			req:  newReq("/orders", `{"sku":"B2"}`, nil),
			want: false,
		},
		{
			name: "body schema",
			path: "/orders",
			opts: []RESTOption{WithBodySchema(map[string]any{"type": "object", "required": []any{"sku"}})},
			req:  newReq("/orders", `{"sku":"A1"}`, nil),
			want: true,
		},
		{
			name: "body schema rejects",
			path: "/orders",
			opts: []RESTOption{WithBodySchema(map[string]any{"type": "object", "required": []any{"sku"}})},
			req:  newReq("/orders", `{"qty":1}`, nil),
			want: false,
		},
		{
			name: "where on json",
			path: "/orders",
			opts: []RESTOption{WithWhere(`request.json.amount > 100`)},
			req:  newReq("/orders", `{"amount":250}`, nil),
			want: true,
		},
		{
			name: "where false",
			path: "/orders",
			opts: []RESTOption{WithWhere(`request.json.amount > 100`)},
			req:  newReq("/orders", `{"amount":5}`, nil),
			want: false,
		},
		{
			name: "where runtime error",
			path: "/orders",
			opts: []RESTOption{WithWhere(`request.json.amount > 100`)},
			req:  newReq("/orders", ``, nil),
			want: false,
		},
		{
			name: "where on path parameter",
			path: "/orders/{id}",
			opts: []RESTOption{WithWhere(`request.pathParameters.id == "7"`)},
			req:  newReq("/orders/7", ``, nil),
			want: true,
		},
		{
			name: "predicate",
			path: "/orders",
			opts: []RESTOption{WithPredicate(func(r *request.Request) bool { return r.Header("X-Env") == "test" })},
			req:  newReq("/orders", "", nil),
			want: false,
		},
		{
			name: "path pattern",
			opts: []RESTOption{WithPathPattern(`^/orders/(?P<id>\d+)$`)},
			req:  newReq("/orders/12", "", nil),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := NewRESTSelector(tt.path, tt.opts...)
			require.NoError(t, err)
			_, ok := sel.Match(tt.req)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRESTSelector_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		opts []RESTOption
	}{
		{"empty path", "", nil},
		{"bad path pattern", "", []RESTOption{WithPathPattern("(")}},
		{"bad body pattern", "/a", []RESTOption{WithBodyPattern("[")}},
		{"bad json path", "/a", []RESTOption{WithJSONPath(map[string]any{"$.[": 1})}},
		{"bad body schema", "/a", []RESTOption{WithBodySchema(map[string]any{"type": 12})}},
		{"bad where", "/a", []RESTOption{WithWhere("request.json >")}},
		{"non boolean where", "/a", []RESTOption{WithWhere(`"text"`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRESTSelector(tt.path, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestHTTP_Captures(t *testing.T) {
	e, err := HTTP("get", "/users/{id}/posts/{post}", response.OK())
	require.NoError(t, err)
	assert.Equal(t, KindREST, e.Kind())
	assert.Equal(t, "GET /users/{id}/posts/{post}", e.String())

	captures, ok := e.Match(request.New("GET", "/users/1/posts/2", nil))
	require.True(t, ok)
	assert.Equal(t, Captures{"id": "1", "post": "2"}, captures)
}
