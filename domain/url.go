package domain

import (
	"fmt"
	"net/url"

	apperrors "github.com/kbukum/hurl/errors"
)

// URL is a syntactically valid URI reference. The raw text is kept as given.
//
// The zero value is the empty URL, which parses but never passes request
// validation.
type URL struct {
	raw    string
	parsed *url.URL
}

// ParseURL parses raw as a URI reference. The scheme is not checked here.
func ParseURL(raw string) (URL, error) {
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c <= ' ' || c == 0x7f {
			return URL{}, apperrors.InvalidInput("url", fmt.Sprintf("Invalid URL '%s': contains whitespace or control characters", raw))
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, apperrors.InvalidInput("url", fmt.Sprintf("Invalid URL '%s'", raw)).WithCause(err)
	}
	return URL{raw: raw, parsed: u}, nil
}

// MustParseURL is like ParseURL but panics on error. Intended for tests and constants.
func MustParseURL(raw string) URL {
	u, err := ParseURL(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// String returns the URL exactly as it was supplied.
func (u URL) String() string { return u.raw }

// IsZero reports whether u is the empty URL.
func (u URL) IsZero() bool { return u.raw == "" }

// Scheme returns the lower-cased scheme, or "" for a relative reference.
func (u URL) Scheme() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.Scheme
}

// Authority returns host[:port] as written in the URL.
func (u URL) Authority() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.Host
}

// Hostname returns the host without port or IPv6 brackets.
func (u URL) Hostname() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.Hostname()
}

// Port returns the explicit port, or "" when none was given.
func (u URL) Port() string {
	if u.parsed == nil {
		return ""
	}
	return u.parsed.Port()
}

// RequestTarget returns the origin-form request target: path and query, "/" when the path is empty.
func (u URL) RequestTarget() string {
	if u.parsed == nil {
		return "/"
	}
	target := u.parsed.EscapedPath()
	if target == "" {
		target = "/"
	}
	if u.parsed.ForceQuery || u.parsed.RawQuery != "" {
		target += "?" + u.parsed.RawQuery
	}
	return target
}
