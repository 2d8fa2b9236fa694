package util

import "strings"

// sensitiveHeaders are masked whenever headers are logged.
var sensitiveHeaders = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
	"X-Auth-Token",
}

// MaskSecret hides sensitive parts of a string for safe display in logs.
// If the string is shorter than visiblePrefix, it is fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// IsSensitiveHeader reports whether values of the named header are masked.
func IsSensitiveHeader(name string) bool {
	for _, h := range sensitiveHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// MaskHeaderValue returns value unchanged unless the header is sensitive.
// For "Scheme credentials" values the scheme stays readable.
func MaskHeaderValue(name, value string) string {
	if !IsSensitiveHeader(name) {
		return value
	}
	if scheme, _, ok := strings.Cut(value, " "); ok {
		return scheme + " ***"
	}
	return MaskSecret(value, 0)
}
