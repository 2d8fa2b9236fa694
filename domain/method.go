package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/hurl/errors"
)

// Method is an HTTP request method from the supported closed set.
type Method string

// Supported methods.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Methods lists every supported method in declaration order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

// ParseMethod parses s case-insensitively.
func ParseMethod(s string) (Method, error) {
	upper := Method(strings.ToUpper(s))
	for _, m := range Methods {
		if m == upper {
			return m, nil
		}
	}
	return "", apperrors.InvalidInput("method", fmt.Sprintf("Unsupported HTTP method: '%s'", s))
}

// String returns the wire verb.
func (m Method) String() string { return string(m) }

// Valid reports whether m belongs to the supported set.
func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}
