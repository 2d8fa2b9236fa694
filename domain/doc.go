// Package domain holds the request/response model exchanged between the
// hurl layers.
//
// URL and JSONBody are value objects: they validate their syntax when
// constructed and never change afterwards. Request aggregates a Method, a
// URL, an ordered header list and an optional JSON body. Response carries
// the status code and the UTF-8 body of a completed exchange.
//
// Semantic rules (scheme, GET without body) are not enforced here; see
// package validation.
package domain
