package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/voodoo/pkg/endpoint"
	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/response"
)

// configPattern selects the files loaded from a directory.
const configPattern = "*.{yml,yaml,json}"

// Loader reads endpoint declarations.
type Loader struct {
	// Functions are the Go functions "dynamic:" responses may name.
	Functions map[string]response.DynamicFunc

	// Logger receives per-file diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Load reads path, a config file or a directory of config files, and
// returns the declared endpoints in declaration order. Directories load
// every *.yml, *.yaml and *.json file directly inside them in lexical
// order. On error no endpoints are returned.
func (l *Loader) Load(path string) ([]*endpoint.Endpoint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, loadFailure(path, "cannot read config", err)
	}

	var endpoints []*endpoint.Endpoint
	if info.IsDir() {
		endpoints, err = l.loadDir(path)
	} else {
		endpoints, err = l.loadFile(path, nil)
	}
	if err != nil {
		return nil, err
	}

	l.log().Info("config loaded", "path", path, "endpoints", len(endpoints))
	return endpoints, nil
}

// Load reads path with a loader that has no dynamic functions.
func Load(path string) ([]*endpoint.Endpoint, error) {
	return (&Loader{}).Load(path)
}

func (l *Loader) log() *slog.Logger {
	return logging.OrNop(l.Logger)
}

func (l *Loader) loadDir(dir string) ([]*endpoint.Endpoint, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), configPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, loadFailure(dir, "listing config files", err)
	}
	sort.Strings(matches)

	var endpoints []*endpoint.Endpoint
	for _, name := range matches {
		loaded, err := l.loadFile(filepath.Join(dir, name), nil)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, loaded...)
	}
	return endpoints, nil
}

// loadFile parses one file. stack holds the files currently being loaded
// and detects include cycles.
func (l *Loader) loadFile(path string, stack []string) ([]*endpoint.Endpoint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, loadFailure(path, "resolving path", err)
	}
	if slices.Contains(stack, abs) {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("include cycle: %v", append(stack, abs))}
	}
	stack = append(stack, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: path, Message: "file not found", Err: err}
		}
		return nil, loadFailure(path, "reading file", err)
	}

	l.log().Debug("loading config file", "path", path)

	var doc any
	if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), &doc); err != nil {
		return nil, loadFailure(path, "parsing file", err)
	}
	if doc == nil {
		return nil, &LoadError{Path: path, Message: "file is empty"}
	}

	f := &fileLoader{loader: l, path: path, dir: filepath.Dir(abs), stack: stack}
	return f.node(doc)
}

// fileLoader flattens the declarations of one file.
type fileLoader struct {
	loader *Loader
	path   string
	dir    string
	stack  []string
	index  int
}

// node flattens a declaration node: a mapping is one endpoint, a sequence
// is flattened in order and a string is a file reference.
func (f *fileLoader) node(v any) ([]*endpoint.Endpoint, error) {
	switch n := v.(type) {
	case []any:
		var endpoints []*endpoint.Endpoint
		for _, item := range n {
			loaded, err := f.node(item)
			if err != nil {
				return nil, err
			}
			endpoints = append(endpoints, loaded...)
		}
		return endpoints, nil

	case string:
		return f.reference(n)

	case map[string]any:
		source := fmt.Sprintf("%s[%d]", f.path, f.index)
		f.index++
		e, err := decodeEndpoint(n, source, f.loader.Functions)
		if err != nil {
			return nil, &LoadError{Path: f.path, Message: fmt.Sprintf("endpoint %d", f.index-1), Err: err}
		}
		return []*endpoint.Endpoint{e}, nil
	}

	return nil, &LoadError{Path: f.path, Message: fmt.Sprintf("unexpected %T in endpoint list", v)}
}

// reference loads a file reference or glob relative to the current file.
func (f *fileLoader) reference(ref string) ([]*endpoint.Endpoint, error) {
	resolved := ResolvePath(f.dir, ref)
	if !isGlob(ref) {
		return f.loader.loadFile(resolved, f.stack)
	}

	matches, err := doublestar.FilepathGlob(resolved, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &LoadError{Path: f.path, Message: fmt.Sprintf("expanding %q", ref), Err: err}
	}
	if len(matches) == 0 {
		f.loader.log().Warn("config reference matched no files", "file", f.path, "pattern", ref)
		return nil, nil
	}
	sort.Strings(matches)

	var endpoints []*endpoint.Endpoint
	for _, match := range matches {
		loaded, err := f.loader.loadFile(match, f.stack)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, loaded...)
	}
	return endpoints, nil
}
