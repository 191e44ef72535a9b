// Package template renders response bodies from named templates.
//
// A template is text containing {{expression}} placeholders. Expressions
// are evaluated against a data map, normally the shared cache merged with
// the response's overrides and the request:
//
//   - {{name}}, {{user.address.city}}, {{items.0.id}} - dotted lookup into
//     the data map; a missing key fails the render
//   - {{request.json.id}}, {{request.headers.Authorization}} - the request
//     is available under "request"
//
// # Built-in Variables
//
//   - {{now}} - current time in RFC3339 format
//   - {{timestamp}}, {{timestamp.iso}}, {{timestamp.unix_ms}}
//   - {{uuid}}, {{uuid.short}}
//   - {{random}} - random 8-character hex string
//   - {{random.int}}, {{random.int(min, max)}}
//   - {{random.float}}, {{random.float(min, max)}}, {{random.float(min, max, precision)}}
//   - {{random.string}}, {{random.string(N)}}
//
// # Functions
//
//   - {{upper(value)}} or {{upper value}}
//   - {{lower(value)}} or {{lower value}}
//   - {{default(value, "fallback")}} - missing or empty values use the fallback
//   - {{json(value)}} - value encoded as JSON
//
// # Sequences
//
//   - {{sequence("name")}} - auto-incrementing counter starting at 1
//   - {{sequence("name", start)}}
//
// Sequences persist for the lifetime of the engine.
//
// Templates are registered by name or loaded from a directory with
// LoadDir; a template file is registered under its relative path and
// under that path without its extension.
package template
