package domain

import (
	"encoding/json"

	apperrors "github.com/kbukum/hurl/errors"
)

// JSONBody is request body text that is valid JSON. The text is kept byte for byte.
type JSONBody struct {
	raw string
}

// ParseJSONBody fails if raw is not valid JSON.
func ParseJSONBody(raw string) (JSONBody, error) {
	if !json.Valid([]byte(raw)) {
		return JSONBody{}, apperrors.InvalidInput("body", "Invalid JSON body")
	}
	return JSONBody{raw: raw}, nil
}

// String returns the original text.
func (b JSONBody) String() string { return b.raw }

// Bytes returns a fresh copy of the original text.
func (b JSONBody) Bytes() []byte { return []byte(b.raw) }

// Len returns the body length in bytes.
func (b JSONBody) Len() int { return len(b.raw) }
