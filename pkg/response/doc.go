// Package response describes how the mock server produces an outgoing
// response for a matched endpoint.
//
// A Response is one of four variants:
//
//   - Raw: a fixed status, headers and body.
//   - Dynamic: a Go function computing a Response from the request and cache.
//   - Scripted: JavaScript source defining function response(request, cache).
//   - Templated: a named template rendered against the shared cache.
//
// The status helpers (OK, NotFound, MovedPermanently, ...) are shorthand
// for Raw values:
//
//	response.OK().WithBody(response.Text("pong"))
//	response.MovedPermanently("http://example.com/new")
//
// Declarations read from config files are turned into Responses by
// FromValue and Decode.
package response
