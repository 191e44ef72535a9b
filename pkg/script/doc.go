// Package script runs JavaScript response scripts in a sandbox.
//
// A script defines a top-level function
//
//	function response(request, cache) { ... }
//
// that returns {status, headers, body}. The request is a frozen copy of
// the inbound request; the cache object reads and writes the shared
// cache by property access (cache.token = "x"). A Response helper is
// predefined with constructors such as Response.ok(body, headers) and
// Response.notFound().
//
// Each run uses a fresh interpreter and is interrupted when it exceeds
// its timeout or its context is cancelled.
package script
