package template

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadDir registers every file below dir. Each file is registered under
// its slash-separated relative path ("users/get.json") and, unless that
// name is taken, under the path without its extension ("users/get").
// Hidden files are skipped. It returns the number of files loaded.
func (e *Engine) LoadDir(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("template directory %s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("listing templates in %s: %w", dir, err)
	}

	loaded := 0
	short := make(map[string]string)
	for _, name := range matches {
		if strings.HasPrefix(path.Base(name), ".") {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return loaded, fmt.Errorf("reading template %s: %w", name, err)
		}
		text := string(data)
		e.Register(name, text)
		loaded++

		if trimmed := strings.TrimSuffix(name, path.Ext(name)); trimmed != name {
			short[trimmed] = text
		}
	}

	for name, text := range short {
		if !e.Has(name) {
			e.Register(name, text)
		}
	}
	return loaded, nil
}
