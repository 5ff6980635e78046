// Package httpapi exposes the Fortitude research pipeline over HTTP,
// implementing the route table from spec §6: health checks, research
// submission and retrieval, classification, and cache inspection and
// mutation. Every response shares the envelope documented in
// response.go; every error shares the error envelope in errors.go.
//
// Routing uses the standard library's method-and-path patterns
// (net/http.ServeMux, Go 1.22+) rather than a third-party router, per
// the teacher's pkg/server package, which is itself a plain
// http.ServeMux wrapped in a middleware chain.
package httpapi
