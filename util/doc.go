// Package util holds small helpers shared across hurl packages: secret
// masking for log output, string helpers and pointer helpers.
package util
