package domain

import "slices"

// Request is an immutable HTTP request description.
type Request struct {
	method  Method
	url     URL
	headers []Header
	body    *JSONBody
}

// NewRequest builds a request. headers are copied; body may be nil.
func NewRequest(method Method, u URL, headers []Header, body *JSONBody) Request {
	r := Request{method: method, url: u, headers: slices.Clone(headers)}
	if body != nil {
		b := *body
		r.body = &b
	}
	return r
}

// Method returns the request method.
func (r Request) Method() Method { return r.method }

// URL returns the target URL.
func (r Request) URL() URL { return r.url }

// Headers returns a copy of the headers in insertion order.
func (r Request) Headers() []Header { return slices.Clone(r.headers) }

// Body returns the JSON body and whether one is present.
func (r Request) Body() (JSONBody, bool) {
	if r.body == nil {
		return JSONBody{}, false
	}
	return *r.body, true
}

// HasBody reports whether a body is present.
func (r Request) HasBody() bool { return r.body != nil }

// HeaderValues returns the values of every header named name (case-insensitive), in order.
func (r Request) HeaderValues(name string) []string {
	var values []string
	for _, h := range r.headers {
		if h.Is(name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Clone returns an independent copy of r.
func (r Request) Clone() Request {
	return NewRequest(r.method, r.url, r.headers, r.body)
}
