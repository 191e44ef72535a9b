// Package server exposes a router over HTTP.
//
// A Server binds the first free port of a range, seeds the shared cache
// with its own base URL and serves until its context is cancelled. Requests
// on the GraphQL path go to the GraphQL endpoints and everything else to
// the REST endpoints. Requests no REST endpoint accepts fall back to static
// files before a JSON 404 is returned.
package server
