// Package request provides the normalised view of an inbound request that
// the matching and resolution core works with.
//
// A Request is built from an *http.Request by the transport boundary and
// is never shared between requests. For GraphQL traffic the body is parsed
// on demand into a GraphQL value holding the operation names and their
// variables:
//
//	gql, err := request.ParseGraphQL([]byte(`{"query":"query GetUser { id }"}`))
//	if err != nil {
//	    // errors.Is(err, request.ErrMalformedGraphQL)
//	}
//	gql.Has("GetUser") // true
//
// No schema is involved. Operation names come from the explicit
// operationName field, or from the query document itself.
package request
