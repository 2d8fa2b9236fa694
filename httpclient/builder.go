package httpclient

import (
	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
)

// RequestBuilder assembles a domain.Request from user-supplied text. The
// first parse error is kept and returned by Build; later calls are no-ops.
type RequestBuilder struct {
	method  domain.Method
	url     domain.URL
	urlSet  bool
	headers []domain.Header
	body    *domain.JSONBody
	err     error
}

// NewRequestBuilder returns a builder whose method defaults to GET.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{method: domain.MethodGet}
}

// Method sets the method from case-insensitive text.
func (b *RequestBuilder) Method(text string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	b.method, b.err = domain.ParseMethod(text)
	return b
}

// URL sets the target URL.
func (b *RequestBuilder) URL(text string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	b.url, b.err = domain.ParseURL(text)
	b.urlSet = b.err == nil
	return b
}

// Header appends one "Name: Value" header.
func (b *RequestBuilder) Header(line string) *RequestBuilder {
	if b.err != nil {
		return b
	}
	h, err := domain.ParseHeader(line)
	if err != nil {
		b.err = err
		return b
	}
	b.headers = append(b.headers, h)
	return b
}

// Headers appends each "Name: Value" line in order.
func (b *RequestBuilder) Headers(lines []string) *RequestBuilder {
	for _, line := range lines {
		b.Header(line)
	}
	return b
}

// AddHeaders appends already parsed headers.
func (b *RequestBuilder) AddHeaders(headers ...domain.Header) *RequestBuilder {
	if b.err == nil {
		b.headers = append(b.headers, headers...)
	}
	return b
}

// Body sets the JSON body. Empty text leaves the request without a body.
func (b *RequestBuilder) Body(text string) *RequestBuilder {
	if b.err != nil || text == "" {
		return b
	}
	body, err := domain.ParseJSONBody(text)
	if err != nil {
		b.err = err
		return b
	}
	b.body = &body
	return b
}

// Build returns the request or the first error. It does not run the
// request validator.
func (b *RequestBuilder) Build() (domain.Request, error) {
	if b.err != nil {
		return domain.Request{}, b.err
	}
	if !b.urlSet {
		return domain.Request{}, apperrors.InvalidInput("url", "URL is required")
	}
	return domain.NewRequest(b.method, b.url, b.headers, b.body), nil
}
