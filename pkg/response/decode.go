package response

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDeclaration is returned when a response declaration cannot be decoded.
var ErrInvalidDeclaration = errors.New("invalid response declaration")

// Declaration keys.
const (
	keyStatus       = "status"
	keyURL          = "url"
	keyHeaders      = "headers"
	keyBody         = "body"
	keyDynamic      = "dynamic"
	keyJavaScript   = "javascript"
	keyTemplate     = "template"
	keyTemplateData = "templateData"
	keyContentType  = "contentType"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDeclaration, fmt.Sprintf(format, args...))
}

// Decode parses a JSON or YAML response declaration. Dynamic declarations
// cannot be decoded this way because no functions are registered.
func Decode(data []byte) (Response, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeclaration, err)
	}
	return FromValue(v, nil)
}

// FromValue builds a Response from a decoded declaration. The variant is
// picked by which key is present: dynamic, javascript or template; without
// any of them the declaration is a Raw status response. A bare string or
// integer is read as a status.
func FromValue(v any, funcs map[string]DynamicFunc) (Response, error) {
	switch decl := v.(type) {
	case string, int, int64, float64:
		code, err := decodeStatus(decl)
		if err != nil {
			return nil, err
		}
		return Status(code), nil
	case map[string]any:
		return fromMap(decl, funcs)
	case nil:
		return nil, invalid("empty response")
	default:
		return nil, invalid("unexpected %T", v)
	}
}

func fromMap(decl map[string]any, funcs map[string]DynamicFunc) (Response, error) {
	var kinds []string
	for _, k := range []string{keyDynamic, keyJavaScript, keyTemplate} {
		if _, ok := decl[k]; ok {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) > 1 {
		return nil, invalid("only one of %s may be given", strings.Join(kinds, ", "))
	}

	headers, err := decodeHeaders(decl[keyHeaders])
	if err != nil {
		return nil, err
	}

	kind := ""
	if len(kinds) == 1 {
		kind = kinds[0]
	}

	switch kind {
	case keyDynamic:
		name, ok := decl[keyDynamic].(string)
		if !ok || name == "" {
			return nil, invalid("dynamic must name a registered function")
		}
		fn, ok := funcs[name]
		if !ok {
			return nil, invalid("no dynamic function registered as %q", name)
		}
		return Dynamic{Name: name, Fn: fn}, nil

	case keyJavaScript:
		src, ok := decl[keyJavaScript].(string)
		if !ok || strings.TrimSpace(src) == "" {
			return nil, invalid("javascript must be a non-empty string")
		}
		return Scripted{Name: "javascript", Source: src}, nil

	case keyTemplate:
		name, ok := decl[keyTemplate].(string)
		if !ok || name == "" {
			return nil, invalid("template must be a template name")
		}
		t := Templated{Status: http.StatusOK, Headers: headers, Template: name}
		if s, ok := decl[keyStatus]; ok {
			if t.Status, err = decodeStatus(s); err != nil {
				return nil, err
			}
		}
		if data, ok := decl[keyTemplateData]; ok {
			m, ok := data.(map[string]any)
			if !ok {
				return nil, invalid("templateData must be a mapping")
			}
			t.Overrides = maps.Clone(m)
		}
		if ct, ok := decl[keyContentType].(string); ok {
			t.ContentType = ct
		}
		return t, nil
	}

	s, ok := decl[keyStatus]
	if !ok {
		return nil, invalid("missing status")
	}
	code, err := decodeStatus(s)
	if err != nil {
		return nil, err
	}

	raw := Raw{Status: code, Headers: headers}
	if IsRedirect(code) {
		url, _ := decl[keyURL].(string)
		if url == "" {
			return nil, invalid("status %d requires a url", code)
		}
		raw = raw.WithHeader("Location", url)
	}

	if b, ok := decl[keyBody]; ok {
		if raw.Body, err = decodeBody(b); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func decodeStatus(v any) (int, error) {
	code, err := statusValue(v)
	if err != nil {
		return 0, err
	}
	if !ValidStatus(code) {
		return 0, invalid("status %d out of range 100-999", code)
	}
	return code, nil
}

func statusValue(v any) (int, error) {
	switch s := v.(type) {
	case int:
		return s, nil
	case int64:
		return int(s), nil
	case float64:
		return int(s), nil
	case string:
		if code, ok := StatusCode(s); ok {
			return code, nil
		}
		if code, err := strconv.Atoi(s); err == nil {
			return code, nil
		}
		return 0, invalid("unknown status %q", s)
	}
	return 0, invalid("status must be a number or keyword, got %T", v)
}

func decodeHeaders(v any) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("headers must be a mapping")
	}
	headers := make(map[string]string, len(m))
	for k, val := range m {
		headers[k] = fmt.Sprint(val)
	}
	return headers, nil
}

func decodeBody(v any) (Body, error) {
	switch b := v.(type) {
	case nil:
		return Empty, nil
	case string:
		return Text(b), nil
	case map[string]any:
		if len(b) == 1 {
			if s, ok := b["text"].(string); ok {
				return Text(s), nil
			}
			if j, ok := b["json"]; ok {
				return JSON(j), nil
			}
			if f, ok := b["file"].(string); ok {
				return File(f), nil
			}
		}
		return JSON(b), nil
	default:
		return JSON(b), nil
	}
}

// Encode returns the declaration form of r, the inverse of FromValue.
func Encode(r Response) map[string]any {
	switch v := r.(type) {
	case Raw:
		out := map[string]any{keyStatus: v.Status}
		headers := v.Headers
		if IsRedirect(v.Status) {
			if loc, ok := headers["Location"]; ok {
				out[keyURL] = loc
				headers = maps.Clone(headers)
				delete(headers, "Location")
			}
		}
		if len(headers) > 0 {
			out[keyHeaders] = stringMap(headers)
		}
		switch v.Body.Kind {
		case BodyText:
			out[keyBody] = v.Body.Text
		case BodyJSON:
			out[keyBody] = map[string]any{"json": v.Body.JSON}
		case BodyFile:
			out[keyBody] = map[string]any{"file": v.Body.Path}
		}
		return out
	case Dynamic:
		return map[string]any{keyDynamic: v.Name}
	case Scripted:
		return map[string]any{keyJavaScript: v.Source}
	case Templated:
		out := map[string]any{keyTemplate: v.Template, keyStatus: v.Status}
		if len(v.Headers) > 0 {
			out[keyHeaders] = stringMap(v.Headers)
		}
		if len(v.Overrides) > 0 {
			out[keyTemplateData] = v.Overrides
		}
		if v.ContentType != "" {
			out[keyContentType] = v.ContentType
		}
		return out
	}
	return nil
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
