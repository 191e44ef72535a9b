package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTP(t *testing.T) {
	r := httptest.NewRequest("post", "/users?page=2&page=3", strings.NewReader(`{"name":"fred"}`))
	r.Header.Set("Content-Type", "application/json")

	req, err := FromHTTP(r, 0)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users", req.Path)
	assert.Equal(t, []string{"2", "3"}, req.Query["page"])
	assert.Equal(t, "application/json", req.Header("Content-Type"))
	assert.Equal(t, `{"name":"fred"}`, string(req.Body))
}

func TestFromHTTP_LimitsBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))

	req, err := FromHTTP(r, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(req.Body))
}

func TestTemplateData(t *testing.T) {
	req := New("get", "/users/7", []byte(`{"a":1}`))
	req.Headers.Set("X-Token", "abc")
	req.Query.Set("q", "x")
	req.PathParams = map[string]string{"id": "7"}
	req.GraphQL = ParseGraphQLDocument("query GetUser { id }", "", map[string]any{"id": 7})

	data := req.TemplateData()

	assert.Equal(t, "GET", data["method"])
	assert.Equal(t, "/users/7", data["path"])
	assert.Equal(t, map[string]any{"X-Token": "abc"}, data["headers"])
	assert.Equal(t, map[string]any{"q": "x"}, data["query"])
	assert.Equal(t, `{"a":1}`, data["body"])
	assert.Equal(t, map[string]any{"a": float64(1)}, data["json"])
	assert.Equal(t, map[string]any{"id": "7"}, data["pathParameters"])
	assert.Equal(t, map[string]any{"GetUser": map[string]any{"id": 7}}, data["operations"])
}

func TestJSON_InvalidBody(t *testing.T) {
	assert.Nil(t, New("POST", "/", []byte("plain")).JSON())
	assert.Nil(t, New("POST", "/", nil).JSON())
}
