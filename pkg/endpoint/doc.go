// Package endpoint defines declared endpoints, the selectors that decide
// whether an endpoint answers a request, and the ordered registry that
// resolves a request to the first endpoint accepting it.
//
// Registration order is significant. Resolve scans endpoints in the order
// they were registered and returns the first whose method and selector
// match; there is no specificity ranking.
package endpoint
