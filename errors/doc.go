// Package errors defines the error taxonomy shared by every hurl layer.
//
// Each failure is an *AppError carrying a machine-readable code. The four
// request-path kinds are:
//
//   - INVALID_INPUT: malformed method, URL, JSON or header text, detected
//     while a request is being constructed.
//   - VALIDATION_FAILED: a well-formed request that breaks a domain rule.
//   - TRANSPORT_FAILED: a request that cannot be put on the wire, or a resolve,
//     connect, TLS, handshake, send or receive failure. The "stage"
//     detail names the step.
//   - RESPONSE_INVALID: the response body is not valid UTF-8.
package errors
