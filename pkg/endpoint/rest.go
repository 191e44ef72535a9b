package endpoint

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/voodoo/internal/matching"
	"github.com/getmockd/voodoo/pkg/request"
)

// RESTSelector matches requests by path and optional query, header and
// body conditions. All configured conditions must hold.
type RESTSelector struct {
	path     matching.PathRule
	query    map[string]string
	headers  map[string]string
	body     matching.BodyRule
	jsonPath matching.JSONPathRule
	schema   matching.SchemaRule
	where    *vm.Program
	whereSrc string

	predicate func(*request.Request) bool

	// options collected before compilation
	bodyEquals, bodyContains, bodyPattern string
	jsonPathConditions                    map[string]any
	bodySchema                            any
	pathPattern                           string
}

// RESTOption configures a RESTSelector.
type RESTOption func(*RESTSelector)

// WithQuery requires the query parameters to be present with the given
// values. A value of "*" only requires presence.
func WithQuery(params map[string]string) RESTOption {
	return func(s *RESTSelector) { s.query = params }
}

// WithHeaders requires the headers to match. Values support * wildcards.
func WithHeaders(headers map[string]string) RESTOption {
	return func(s *RESTSelector) { s.headers = headers }
}

// WithBodyEquals requires the body to equal body exactly.
func WithBodyEquals(body string) RESTOption {
	return func(s *RESTSelector) { s.bodyEquals = body }
}

// WithBodyContains requires the body to contain substr.
func WithBodyContains(substr string) RESTOption {
	return func(s *RESTSelector) { s.bodyContains = substr }
}

// WithBodyPattern requires the body to match the regular expression.
func WithBodyPattern(pattern string) RESTOption {
	return func(s *RESTSelector) { s.bodyPattern = pattern }
}

// WithJSONPath requires the JSON body to satisfy every JSONPath condition.
func WithJSONPath(conditions map[string]any) RESTOption {
	return func(s *RESTSelector) { s.jsonPathConditions = conditions }
}

// WithBodySchema requires the body to be JSON valid against the JSON
// Schema given as decoded data.
func WithBodySchema(schema any) RESTOption {
	return func(s *RESTSelector) { s.bodySchema = schema }
}

// WithWhere requires the boolean expression to hold. The request is
// available to the expression as "request" with the fields of
// request.Request.TemplateData.
func WithWhere(expression string) RESTOption {
	return func(s *RESTSelector) { s.whereSrc = expression }
}

// WithPredicate requires fn to accept the request.
func WithPredicate(fn func(*request.Request) bool) RESTOption {
	return func(s *RESTSelector) { s.predicate = fn }
}

// WithPathPattern replaces the path with a regular expression. Named
// capture groups become path parameters.
func WithPathPattern(pattern string) RESTOption {
	return func(s *RESTSelector) { s.pathPattern = pattern }
}

// NewRESTSelector compiles a selector for path.
func NewRESTSelector(path string, opts ...RESTOption) (*RESTSelector, error) {
	s := &RESTSelector{}
	for _, opt := range opts {
		opt(s)
	}

	if s.pathPattern != "" {
		rule, err := matching.CompilePathPattern(s.pathPattern)
		if err != nil {
			return nil, err
		}
		s.path = rule
	} else {
		if path == "" {
			return nil, fmt.Errorf("endpoint path is required")
		}
		s.path = matching.CompilePath(path)
	}

	body, err := matching.CompileBodyRule(s.bodyEquals, s.bodyContains, s.bodyPattern)
	if err != nil {
		return nil, err
	}
	s.body = body

	jsonPath, err := matching.CompileJSONPath(s.jsonPathConditions)
	if err != nil {
		return nil, err
	}
	s.jsonPath = jsonPath

	schema, err := matching.CompileSchema(s.bodySchema)
	if err != nil {
		return nil, err
	}
	s.schema = schema

	if s.whereSrc != "" {
		program, err := compileWhere(s.whereSrc)
		if err != nil {
			return nil, err
		}
		s.where = program
	}

	return s, nil
}

func compileWhere(expression string) (*vm.Program, error) {
	env := map[string]any{"request": map[string]any{}}
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile where %q: %w", expression, err)
	}
	return program, nil
}

// Kind implements Selector.
func (s *RESTSelector) Kind() Kind { return KindREST }

// Match implements Selector. The returned captures are the path parameters.
func (s *RESTSelector) Match(req *request.Request) (Captures, bool) {
	params, ok := s.path.Match(req.Path)
	if !ok {
		return nil, false
	}
	if !matching.MatchQuery(s.query, req.Query) {
		return nil, false
	}
	if !matching.MatchHeaders(s.headers, req.Headers) {
		return nil, false
	}
	if !s.body.Match(req.Body) {
		return nil, false
	}
	if !s.jsonPath.Match(req.Body) {
		return nil, false
	}
	if !s.schema.Match(req.Body) {
		return nil, false
	}
	if s.where != nil && !s.evalWhere(req, params) {
		return nil, false
	}
	if s.predicate != nil && !s.predicate(req) {
		return nil, false
	}
	return Captures(params), true
}

// evalWhere runs the where expression. Evaluation errors do not match.
func (s *RESTSelector) evalWhere(req *request.Request, params map[string]string) bool {
	data := req.TemplateData()
	captured := make(map[string]any, len(params))
	for k, v := range params {
		captured[k] = v
	}
	data["pathParameters"] = captured

	result, err := expr.Run(s.where, map[string]any{"request": data})
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

func (s *RESTSelector) String() string {
	return s.path.String()
}
