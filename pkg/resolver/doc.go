// Package resolver turns a matched endpoint's response declaration into a
// concrete outgoing response.
//
// Raw responses are written as declared. Dynamic responses call a Go
// function, scripted responses run JavaScript and templated responses are
// rendered against the shared cache merged with the response overrides
// and the request. A computed response is resolved once more; nesting
// beyond that fails with ErrResolutionDepthExceeded.
package resolver
