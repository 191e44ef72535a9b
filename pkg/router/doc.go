// Package router composes the endpoint registries and the resolver for
// one inbound request.
//
// REST traffic is resolved against REST endpoints only; GraphQL traffic
// is parsed first and resolved against GraphQL endpoints only.
package router
