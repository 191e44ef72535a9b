package template

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine holds named templates and renders them.
// Rendering is safe for concurrent use; templates are normally registered
// before serving starts.
type Engine struct {
	mu        sync.RWMutex
	templates map[string]string

	sequences *SequenceStore
	rand      *randSource
}

// Option configures an Engine.
type Option func(*Engine)

// WithSequences shares a sequence store between engines.
func WithSequences(store *SequenceStore) Option {
	return func(e *Engine) { e.sequences = store }
}

// WithSeed makes random built-ins deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rand = newRandSource(seed) }
}

// New creates an engine with no templates.
func New(opts ...Option) *Engine {
	e := &Engine{
		templates: make(map[string]string),
		sequences: NewSequenceStore(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds or replaces the named template.
func (e *Engine) Register(name, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[name] = text
}

// Has reports whether the named template exists.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.templates[name]
	return ok
}

// Names returns the registered template names in sorted order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders the named template against data.
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	e.mu.RLock()
	text, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", &RenderError{Template: name, Reason: "unknown template"}
	}

	out, err := e.Process(text, data)
	if err != nil {
		if re, ok := err.(*RenderError); ok {
			re.Template = name
		}
		return "", err
	}
	return out, nil
}

// templateRegex matches {{expression}} patterns with optional whitespace.
var templateRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Compiled patterns for function-call syntax.
var (
	randomIntPattern    = regexp.MustCompile(`^random\.int(?:\((-?\d+),\s*(-?\d+)\))?$`)
	randomFloatPattern  = regexp.MustCompile(`^random\.float(?:\(([0-9.]+),\s*([0-9.]+)(?:,\s*(\d+))?\))?$`)
	randomStringPattern = regexp.MustCompile(`^random\.string(?:\((\d+)\))?$`)
	sequencePattern     = regexp.MustCompile(`^sequence\("([^"]+)"(?:,\s*(\d+))?\)$`)
	funcCallPattern     = regexp.MustCompile(`^(\w+)\((.+)\)$`)
)

// Process evaluates every {{expression}} in text. The first expression
// that cannot be resolved fails the whole render.
func (e *Engine) Process(text string, data map[string]any) (string, error) {
	var firstErr error
	result := templateRegex.ReplaceAllStringFunc(text, func(match string) string {
		if firstErr != nil {
			return match
		}
		inner := templateRegex.FindStringSubmatch(match)
		expr := strings.TrimSpace(inner[1])
		value, err := e.evaluate(expr, data)
		if err != nil {
			firstErr = &RenderError{Expression: expr, Reason: err.Error()}
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// ProcessValue renders every string inside a decoded JSON or YAML value.
// Other values are returned unchanged.
func (e *Engine) ProcessValue(value any, data map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		return e.Process(v, data)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			processed, err := e.ProcessValue(val, data)
			if err != nil {
				return nil, err
			}
			out[key] = processed
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			processed, err := e.ProcessValue(val, data)
			if err != nil {
				return nil, err
			}
			out[i] = processed
		}
		return out, nil
	default:
		return value, nil
	}
}

// evaluate resolves a single expression.
func (e *Engine) evaluate(expr string, data map[string]any) (string, error) {
	if v, ok := e.builtin(expr); ok {
		return v, nil
	}

	if v, handled, err := e.evaluateCall(expr, data); handled {
		return v, err
	}

	if v, handled, err := e.evaluateSpaceSeparated(expr, data); handled {
		return v, err
	}

	value, ok := Lookup(data, expr)
	if !ok {
		return "", fmt.Errorf("unresolved key %q", expr)
	}
	return formatValue(value), nil
}

// builtin resolves variables that take no arguments.
func (e *Engine) builtin(expr string) (string, bool) {
	switch expr {
	case "now":
		return time.Now().Format(time.RFC3339), true
	case "uuid":
		return uuid.NewString(), true
	case "uuid.short":
		return uuid.NewString()[:8], true
	case "timestamp", "timestamp.unix":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case "timestamp.iso":
		return time.Now().UTC().Format(time.RFC3339Nano), true
	case "timestamp.unix_ms":
		return strconv.FormatInt(time.Now().UnixMilli(), 10), true
	case "random":
		b := make([]byte, 4)
		for i := range b {
			b[i] = byte(e.rand.intN(256))
		}
		return hex.EncodeToString(b), true
	case "random.int":
		return e.randomInt(0, 100), true
	case "random.float":
		return strconv.FormatFloat(e.rand.float64(), 'f', 6, 64), true
	case "random.string":
		return e.randomString(10), true
	}
	return "", false
}

// evaluateCall handles function-call syntax: fn(arg1, arg2).
func (e *Engine) evaluateCall(expr string, data map[string]any) (string, bool, error) {
	if m := randomIntPattern.FindStringSubmatch(expr); m != nil && m[1] != "" {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo > hi {
			return "", true, fmt.Errorf("random.int: min %d greater than max %d", lo, hi)
		}
		return e.randomInt(lo, hi), true, nil
	}

	if m := randomFloatPattern.FindStringSubmatch(expr); m != nil && m[1] != "" {
		return e.randomFloatRange(m[1], m[2], m[3]), true, nil
	}

	if m := randomStringPattern.FindStringSubmatch(expr); m != nil {
		length := 10
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			length = n
		}
		return e.randomString(length), true, nil
	}

	if m := sequencePattern.FindStringSubmatch(expr); m != nil {
		start := int64(1)
		if m[2] != "" {
			start, _ = strconv.ParseInt(m[2], 10, 64)
		}
		return strconv.FormatInt(e.sequences.Next(m[1], start), 10), true, nil
	}

	m := funcCallPattern.FindStringSubmatch(expr)
	if m == nil {
		return "", false, nil
	}
	args := splitFuncArgs(m[2])
	return e.call(m[1], args, data)
}

// evaluateSpaceSeparated handles the shorthand form: fn arg1 arg2.
func (e *Engine) evaluateSpaceSeparated(expr string, data map[string]any) (string, bool, error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return "", false, nil
	}
	switch parts[0] {
	case "upper", "lower", "json":
		return e.call(parts[0], parts[1:2], data)
	case "default":
		return e.call(parts[0], []string{parts[1], strings.Join(parts[2:], " ")}, data)
	}
	return "", false, nil
}

func (e *Engine) call(name string, args []string, data map[string]any) (string, bool, error) {
	switch name {
	case "upper", "lower":
		if len(args) != 1 {
			return "", true, fmt.Errorf("%s takes one argument", name)
		}
		v, err := e.resolveArg(args[0], data)
		if err != nil {
			return "", true, err
		}
		if name == "upper" {
			return strings.ToUpper(v), true, nil
		}
		return strings.ToLower(v), true, nil

	case "default":
		if len(args) < 2 {
			return "", true, fmt.Errorf("default takes a value and a fallback")
		}
		v, err := e.resolveArg(args[0], data)
		if err != nil || v == "" {
			return parseStringArg(args[1]), true, nil
		}
		return v, true, nil

	case "json":
		if len(args) != 1 {
			return "", true, fmt.Errorf("json takes one argument")
		}
		value, ok := Lookup(data, strings.TrimSpace(args[0]))
		if !ok {
			return "", true, fmt.Errorf("unresolved key %q", args[0])
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", true, err
		}
		return string(encoded), true, nil
	}
	return "", false, nil
}

// resolveArg resolves a function argument. Quoted strings are literals;
// anything else is evaluated as an expression.
func (e *Engine) resolveArg(ref string, data map[string]any) (string, error) {
	ref = strings.TrimSpace(ref)
	if isQuoted(ref) {
		return ref[1 : len(ref)-1], nil
	}
	return e.evaluate(ref, data)
}

// Lookup resolves a dotted path such as "user.items.0.id" in data.
func Lookup(data map[string]any, path string) (any, bool) {
	if v, ok := data[path]; ok {
		return v, true
	}

	var current any = data
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			current = v[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// formatValue converts a value to its template text. Maps and slices are
// written as JSON.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any, map[string]string:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isQuoted(s string) bool {
	return len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}

// parseStringArg removes surrounding quotes from a string argument if present.
func parseStringArg(s string) string {
	s = strings.TrimSpace(s)
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// splitFuncArgs splits function arguments separated by commas,
// respecting quoted strings.
func splitFuncArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inQuote:
			current.WriteByte(ch)
			if ch == quoteChar {
				inQuote = false
			}
		case ch == '"' || ch == '\'':
			inQuote = true
			quoteChar = ch
			current.WriteByte(ch)
		case ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}
