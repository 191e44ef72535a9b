package response

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// BodyKind identifies the body variant.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyText
	BodyJSON
	BodyFile
)

// Content types set for non-empty bodies.
const (
	ContentTypeText        = "text/plain; charset=utf-8"
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// Body is the payload of a Raw response.
type Body struct {
	Kind BodyKind
	Text string
	JSON any
	Path string
}

// Empty is the body of a response without content.
var Empty = Body{}

// Text returns a plain text body.
func Text(s string) Body { return Body{Kind: BodyText, Text: s} }

// JSON returns a body that is marshalled to JSON when resolved.
func JSON(v any) Body { return Body{Kind: BodyJSON, JSON: v} }

// File returns a body read from path when resolved.
func File(path string) Body { return Body{Kind: BodyFile, Path: path} }

// IsEmpty reports whether b contributes no content.
func (b Body) IsEmpty() bool {
	return b.Kind == BodyEmpty
}

// ContentType returns the content type b implies, or "" for an empty body.
func (b Body) ContentType() string {
	switch b.Kind {
	case BodyText:
		return ContentTypeText
	case BodyJSON:
		return ContentTypeJSON
	case BodyFile:
		if ct := mime.TypeByExtension(filepath.Ext(b.Path)); ct != "" {
			return ct
		}
		return ContentTypeOctetStream
	}
	return ""
}

// Bytes renders b. Relative file paths are resolved against baseDir.
func (b Body) Bytes(baseDir string) ([]byte, error) {
	switch b.Kind {
	case BodyText:
		return []byte(b.Text), nil
	case BodyJSON:
		data, err := json.Marshal(b.JSON)
		if err != nil {
			return nil, fmt.Errorf("encoding JSON body: %w", err)
		}
		return data, nil
	case BodyFile:
		path := b.Path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		return data, nil
	}
	return nil, nil
}
