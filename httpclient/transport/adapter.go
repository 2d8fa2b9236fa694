package transport

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
)

// ContentTypeJSON is sent with every body unless the caller set a Content-Type.
const ContentTypeJSON = "application/json"

// WireRequest is a request ready to be written as HTTP/1.1.
type WireRequest struct {
	Method string
	Target string // origin-form request target
	Host   string
	Header []domain.Header
	Body   []byte
	// ContentLength is -1 when no Content-Length header is written.
	ContentLength int
}

// AdaptMethod maps a domain method to its wire verb. Methods outside the
// supported set fail at the build stage.
func AdaptMethod(m domain.Method) (string, error) {
	if !m.Valid() {
		return "", apperrors.Transport(apperrors.StageBuild, fmt.Errorf("unsupported method %q", string(m)))
	}
	return m.String(), nil
}

// AdaptRequest builds the wire request for req.
//
// Header rules:
//   - Host comes from the caller's first Host header, else from the URL authority.
//   - Content-Type: application/json is placed first when a body is present
//     and the caller did not set a Content-Type; a caller's value wins.
//   - Content-Length and Transfer-Encoding from the caller are dropped;
//     framing is computed from the body.
//   - Every other header is kept verbatim and in order, duplicates included.
func AdaptRequest(req domain.Request) (*WireRequest, error) {
	method, err := AdaptMethod(req.Method())
	if err != nil {
		return nil, err
	}

	host, err := httpguts.PunycodeHostPort(req.URL().Authority())
	if err != nil {
		return nil, apperrors.Transport(apperrors.StageBuild, err)
	}

	body, hasBody := req.Body()
	callerHeaders := req.Headers()
	header := make([]domain.Header, 0, len(callerHeaders)+1)
	if hasBody && len(req.HeaderValues("Content-Type")) == 0 {
		header = append(header, domain.Header{Name: "Content-Type", Value: ContentTypeJSON})
	}

	hostSet := false
	for _, h := range callerHeaders {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return nil, apperrors.Transport(apperrors.StageBuild, fmt.Errorf("invalid header field name %q", h.Name))
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return nil, apperrors.Transport(apperrors.StageBuild, fmt.Errorf("invalid header field value for %q", h.Name))
		}
		switch {
		case h.Is("Host"):
			if !hostSet {
				host, hostSet = h.Value, true
			}
			continue
		case h.Is("Content-Length"), h.Is("Transfer-Encoding"):
			continue
		}
		header = append(header, h)
	}
	if host == "" {
		return nil, apperrors.Transport(apperrors.StageBuild, fmt.Errorf("no Host for %q", req.URL().String()))
	}

	w := &WireRequest{
		Method:        method,
		Target:        req.URL().RequestTarget(),
		Host:          host,
		Header:        header,
		ContentLength: -1,
	}
	switch {
	case hasBody:
		w.Body = body.Bytes()
		w.ContentLength = len(w.Body)
	case method == "POST" || method == "PUT" || method == "PATCH":
		w.ContentLength = 0
	}
	return w, nil
}

// AdaptResponse converts a wire response. The body must be valid UTF-8.
func AdaptResponse(w *WireResponse) (domain.Response, error) {
	if off := invalidUTF8Offset(w.Body); off >= 0 {
		return domain.Response{}, apperrors.InvalidResponse("Response body contains invalid UTF-8",
			fmt.Errorf("invalid byte 0x%02x at offset %d", w.Body[off], off)).
			WithDetail("status", w.StatusCode)
	}
	return domain.Response{Status: w.StatusCode, Body: string(w.Body)}, nil
}

func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
