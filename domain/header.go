package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/hurl/errors"
)

// Header is a single name/value pair. Requests keep headers in insertion
// order and allow repeated names.
type Header struct {
	Name  string
	Value string
}

// ParseHeader parses a "Name: Value" line. It splits on the first colon and
// trims both sides.
func ParseHeader(line string) (Header, error) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return Header{}, apperrors.InvalidInput("header", fmt.Sprintf("Invalid header format: '%s'. Use 'Key: Value'", line))
	}
	return Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}, nil
}

// String renders the header as "Name: Value".
func (h Header) String() string { return h.Name + ": " + h.Value }

// Is reports whether the header name equals name, ignoring case.
func (h Header) Is(name string) bool { return strings.EqualFold(h.Name, name) }
