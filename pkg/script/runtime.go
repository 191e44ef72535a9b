package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/getmockd/voodoo/pkg/cache"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/request"
	"github.com/getmockd/voodoo/pkg/response"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// entryPoint is the function every script must define.
const entryPoint = "response"

// Runtime executes response scripts. It is safe for concurrent use; each
// run gets its own interpreter.
type Runtime struct {
	timeout time.Duration
	log     *slog.Logger

	// compiled programs keyed by source
	programs sync.Map

	preludeOnce sync.Once
	prelude     *goja.Program
	preludeErr  error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the per-run time limit. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger receiving console.log output and run
// diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runtime) { r.log = logging.OrNop(log) }
}

// New creates a runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		timeout: DefaultTimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the per-run time limit.
func (r *Runtime) Timeout() time.Duration {
	return r.timeout
}

// Run executes the script and converts its result into a Raw response.
// Every failure is an *ExecutionError.
func (r *Runtime) Run(ctx context.Context, s response.Scripted, req *request.Request, c *cache.Cache) (raw response.Raw, err error) {
	name := s.Name
	if name == "" {
		name = "inline"
	}

	program, err := r.compile(name, s.Source)
	if err != nil {
		return response.Raw{}, err
	}
	preludeProgram, err := r.compilePrelude()
	if err != nil {
		return response.Raw{}, failed(name, err, "prelude: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vm := goja.New()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	defer func() {
		if p := recover(); p != nil {
			err = failed(name, nil, "panic: %v", p)
		}
	}()

	r.installConsole(vm, name)
	if _, err := vm.RunProgram(preludeProgram); err != nil {
		return response.Raw{}, r.wrap(name, ctx, err)
	}

	reqValue, err := frozenRequest(vm, req)
	if err != nil {
		return response.Raw{}, r.wrap(name, ctx, err)
	}
	cacheValue := vm.NewDynamicObject(&cacheObject{vm: vm, cache: c})

	if _, err := vm.RunProgram(program); err != nil {
		return response.Raw{}, r.wrap(name, ctx, err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return response.Raw{}, failed(name, nil, "script does not define function %s(request, cache)", entryPoint)
	}

	result, err := fn(goja.Undefined(), reqValue, cacheValue)
	if err != nil {
		return response.Raw{}, r.wrap(name, ctx, err)
	}

	raw, err = toRaw(result)
	if err != nil {
		return response.Raw{}, failed(name, err, "invalid response: %v", err)
	}

	r.log.Debug("script completed", "script", name, "status", raw.Status)
	return raw, nil
}

func (r *Runtime) compile(name, source string) (*goja.Program, error) {
	if p, ok := r.programs.Load(source); ok {
		return p.(*goja.Program), nil
	}
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, failed(name, err, "syntax error: %v", err)
	}
	r.programs.Store(source, program)
	return program, nil
}

func (r *Runtime) compilePrelude() (*goja.Program, error) {
	r.preludeOnce.Do(func() {
		r.prelude, r.preludeErr = goja.Compile("prelude", prelude, false)
	})
	return r.prelude, r.preludeErr
}

// wrap converts an interpreter error into an ExecutionError.
func (r *Runtime) wrap(name string, ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failed(name, context.DeadlineExceeded, "timed out after %s", r.timeout)
		}
		return failed(name, ctx.Err(), "interrupted: %v", ctx.Err())
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return failed(name, err, "%s", exception.Value().String())
	}
	return failed(name, err, "%v", err)
}

func (r *Runtime) installConsole(vm *goja.Runtime, name string) {
	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		r.log.Debug("script console", "script", name, "message", strings.Join(parts, " "))
		return goja.Undefined()
	}
	console := vm.NewObject()
	_ = console.Set("log", logFn)
	_ = console.Set("error", logFn)
	_ = vm.Set("console", console)
}

// frozenRequest passes the request into the interpreter as a deep-frozen
// plain object.
func frozenRequest(vm *goja.Runtime, req *request.Request) (goja.Value, error) {
	data, err := json.Marshal(req.TemplateData())
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	parse, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	if !ok {
		return nil, errors.New("JSON.parse unavailable")
	}
	value, err := parse(goja.Undefined(), vm.ToValue(string(data)))
	if err != nil {
		return nil, err
	}

	freeze, ok := goja.AssertFunction(vm.Get("__deepFreeze"))
	if !ok {
		return nil, errors.New("prelude not loaded")
	}
	return freeze(goja.Undefined(), value)
}

// toRaw converts the value returned by response(request, cache).
func toRaw(v goja.Value) (response.Raw, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return response.Raw{}, errors.New("response returned no value")
	}

	obj, ok := v.Export().(map[string]any)
	if !ok {
		return response.Raw{}, fmt.Errorf("response returned %s, expected an object", v.ExportType())
	}

	raw := response.Raw{Status: 200}
	if s, ok := obj["status"]; ok && s != nil {
		status, err := toStatus(s)
		if err != nil {
			return response.Raw{}, err
		}
		raw.Status = status
	}

	if h, ok := obj["headers"]; ok && h != nil {
		m, ok := h.(map[string]any)
		if !ok {
			return response.Raw{}, errors.New("headers must be an object")
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		headers := make(map[string]string, len(m))
		for _, k := range keys {
			headers[k] = fmt.Sprint(m[k])
		}
		raw.Headers = headers
	}

	switch body := obj["body"].(type) {
	case nil:
	case string:
		raw.Body = response.Text(body)
	default:
		raw.Body = response.JSON(body)
	}

	return raw, nil
}

func toStatus(v any) (int, error) {
	code, err := statusNumber(v)
	if err != nil {
		return 0, err
	}
	if !response.ValidStatus(code) {
		return 0, fmt.Errorf("status %d out of range 100-999", code)
	}
	return code, nil
}

func statusNumber(v any) (int, error) {
	switch s := v.(type) {
	case int64:
		return int(s), nil
	case float64:
		if s != math.Trunc(s) {
			return 0, fmt.Errorf("status %v is not an integer", s)
		}
		return int(s), nil
	case string:
		if code, ok := response.StatusCode(s); ok {
			return code, nil
		}
		return 0, fmt.Errorf("unknown status %q", s)
	}
	return 0, fmt.Errorf("status must be a number, got %T", v)
}
