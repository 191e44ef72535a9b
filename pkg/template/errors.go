package template

import (
	"errors"
	"fmt"
)

// ErrTemplateRender is the sentinel wrapped by every render failure.
var ErrTemplateRender = errors.New("template render failed")

// RenderError describes a failed render.
type RenderError struct {
	// Template is the template name, empty for inline text.
	Template string
	// Expression is the placeholder that failed, if any.
	Expression string
	Reason     string
}

func (e *RenderError) Error() string {
	switch {
	case e.Template != "" && e.Expression != "":
		return fmt.Sprintf("template %q: {{%s}}: %s", e.Template, e.Expression, e.Reason)
	case e.Template != "":
		return fmt.Sprintf("template %q: %s", e.Template, e.Reason)
	case e.Expression != "":
		return fmt.Sprintf("template: {{%s}}: %s", e.Expression, e.Reason)
	}
	return "template: " + e.Reason
}

// Unwrap returns ErrTemplateRender.
func (e *RenderError) Unwrap() error {
	return ErrTemplateRender
}
