package transport

import (
	"strings"
	"testing"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
)

func TestAdaptMethod(t *testing.T) {
	for _, m := range domain.Methods {
		got, err := AdaptMethod(m)
		if err != nil {
			t.Fatalf("AdaptMethod(%s): %v", m, err)
		}
		if got != m.String() {
			t.Errorf("AdaptMethod(%s) = %q", m, got)
		}
	}

	_, err := AdaptMethod(domain.Method("TRACE"))
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if stage := mustAppError(t, err).Stage(); stage != apperrors.StageBuild {
		t.Errorf("stage = %q, want %q", stage, apperrors.StageBuild)
	}
}

func TestAdaptRequest_CallerContentTypeWins(t *testing.T) {
	headers := []domain.Header{{Name: "content-type", Value: "application/vnd.api+json"}}
	req := domain.NewRequest(domain.MethodPost, domain.MustParseURL("http://example.com"), headers, mustBody(t, `[]`))

	w, err := AdaptRequest(req)
	if err != nil {
		t.Fatalf("AdaptRequest: %v", err)
	}
	var values []string
	for _, h := range w.Header {
		if h.Is("Content-Type") {
			values = append(values, h.Value)
		}
	}
	if len(values) != 1 || values[0] != "application/vnd.api+json" {
		t.Errorf("Content-Type values = %v, want only the caller's", values)
	}
}

func TestAdaptRequest_FramingHeadersDropped(t *testing.T) {
	headers := []domain.Header{
		{Name: "Content-Length", Value: "999"},
		{Name: "Transfer-Encoding", Value: "chunked"},
		{Name: "X-Keep", Value: "yes"},
	}
	req := domain.NewRequest(domain.MethodPost, domain.MustParseURL("http://example.com"), headers, mustBody(t, `{}`))

	w, err := AdaptRequest(req)
	if err != nil {
		t.Fatalf("AdaptRequest: %v", err)
	}
	if w.ContentLength != 2 {
		t.Errorf("ContentLength = %d, want 2", w.ContentLength)
	}
	for _, h := range w.Header {
		if h.Is("Content-Length") || h.Is("Transfer-Encoding") {
			t.Errorf("framing header %q leaked to the wire", h.Name)
		}
	}
	if len(w.Header) != 2 || w.Header[1].Name != "X-Keep" {
		t.Errorf("headers = %v", w.Header)
	}
}

func TestAdaptRequest_Host(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		headers []domain.Header
		want    string
	}{
		{"from authority", "http://example.com:8080/x", nil, "example.com:8080"},
		{"ipv6", "http://[::1]:9000/", nil, "[::1]:9000"},
		{"idn", "http://bücher.example/", nil, "xn--bcher-kva.example"},
		{"caller override", "http://127.0.0.1/", []domain.Header{{Name: "host", Value: "api.internal"}, {Name: "Host", Value: "ignored"}}, "api.internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := AdaptRequest(domain.NewRequest(domain.MethodGet, domain.MustParseURL(tt.url), tt.headers, nil))
			if err != nil {
				t.Fatalf("AdaptRequest: %v", err)
			}
			if w.Host != tt.want {
				t.Errorf("Host = %q, want %q", w.Host, tt.want)
			}
			for _, h := range w.Header {
				if h.Is("Host") {
					t.Errorf("Host must only be written once, found %v in Header", h)
				}
			}
		})
	}
}

func TestAdaptRequest_InvalidHeader(t *testing.T) {
	tests := map[string]domain.Header{
		"space in name":    {Name: "Bad Name", Value: "v"},
		"empty name":       {Name: "", Value: "v"},
		"newline in value": {Name: "X-A", Value: "a\r\nInjected: 1"},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			req := domain.NewRequest(domain.MethodGet, domain.MustParseURL("http://example.com"), []domain.Header{h}, nil)
			_, err := AdaptRequest(req)
			if !apperrors.IsTransport(err) {
				t.Fatalf("expected transport error, got %v", err)
			}
			if stage := mustAppError(t, err).Stage(); stage != apperrors.StageBuild {
				t.Errorf("stage = %q, want %q", stage, apperrors.StageBuild)
			}
		})
	}
}

func TestAdaptResponse(t *testing.T) {
	resp, err := AdaptResponse(&WireResponse{StatusCode: 404, Body: []byte("not found ✓")})
	if err != nil {
		t.Fatalf("AdaptResponse: %v", err)
	}
	if resp.Status != 404 || resp.Body != "not found ✓" {
		t.Errorf("got %+v", resp)
	}

	empty, err := AdaptResponse(&WireResponse{StatusCode: 204})
	if err != nil || empty.Body != "" {
		t.Errorf("empty body: got %+v, %v", empty, err)
	}
}

func TestAdaptResponse_InvalidUTF8(t *testing.T) {
	_, err := AdaptResponse(&WireResponse{StatusCode: 200, Body: []byte{'o', 'k', 0xff, 0xfe}})
	if !apperrors.IsResponse(err) {
		t.Fatalf("expected response error, got %v", err)
	}
	appErr := mustAppError(t, err)
	if appErr.Details["status"] != 200 {
		t.Errorf("status detail = %v", appErr.Details["status"])
	}
	if !strings.Contains(appErr.Cause.Error(), "offset 2") {
		t.Errorf("cause = %v, want offset 2", appErr.Cause)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		url  string
		want Endpoint
	}{
		{"http://example.com/x", Endpoint{Scheme: "http", Host: "example.com", Port: "80"}},
		{"https://example.com", Endpoint{Scheme: "https", Host: "example.com", Port: "443"}},
		{"https://example.com:8443", Endpoint{Scheme: "https", Host: "example.com", Port: "8443"}},
		{"http://[::1]:81/", Endpoint{Scheme: "http", Host: "::1", Port: "81"}},
	}
	for _, tt := range tests {
		got, err := Resolve(domain.MustParseURL(tt.url))
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.url, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %+v, want %+v", tt.url, got, tt.want)
		}
	}

	if addr := (Endpoint{Host: "::1", Port: "81"}).Address(); addr != "[::1]:81" {
		t.Errorf("Address = %q", addr)
	}
}

func TestResolve_NoHost(t *testing.T) {
	_, err := Resolve(domain.MustParseURL("http:///path"))
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if stage := mustAppError(t, err).Stage(); stage != apperrors.StageResolve {
		t.Errorf("stage = %q, want %q", stage, apperrors.StageResolve)
	}
}

func mustAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}
