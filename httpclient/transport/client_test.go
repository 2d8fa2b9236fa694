package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/logger"
	"github.com/kbukum/hurl/security"
	"github.com/kbukum/hurl/security/tlstest"
)

func newClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

type echo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Host        string `json:"host"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(echo{
		Method:      r.Method,
		Path:        r.URL.RequestURI(),
		Host:        r.Host,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
}

func TestClient_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer srv.Close()

	c := newClient(t)
	req := domain.NewRequest(domain.MethodPost, domain.MustParseURL(srv.URL+"/items?x=1"),
		[]domain.Header{{Name: "X-Test", Value: "1"}}, mustBody(t, `{"name":"widget"}`))

	resp, err := c.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.Status)
	}
	var got echo
	if err := json.Unmarshal([]byte(resp.Body), &got); err != nil {
		t.Fatalf("decode %q: %v", resp.Body, err)
	}
	want := echo{
		Method:      "POST",
		Path:        "/items?x=1",
		Host:        srv.Listener.Addr().String(),
		ContentType: "application/json",
		Body:        `{"name":"widget"}`,
	}
	if got != want {
		t.Errorf("server saw %+v, want %+v", got, want)
	}
}

func TestClient_Send_ChunkedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"part":`)
		w.(http.Flusher).Flush()
		_, _ = io.WriteString(w, `1}`)
	}))
	defer srv.Close()

	resp, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL(srv.URL), nil, nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Body != `{"part":1}` {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestClient_Send_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL(srv.URL), nil, nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != http.StatusServiceUnavailable || resp.Body != "nope\n" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}
}

func TestClient_Send_Head(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
	}))
	defer srv.Close()

	resp, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodHead, domain.MustParseURL(srv.URL), nil, nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != 200 || resp.Body != "" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}
}

// rawServer accepts one connection, records what the client sent and replies
// with reply. An empty reply closes the connection without answering.
func rawServer(t *testing.T, reply string) (addr string, sent <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		req, err := http.ReadRequest(bufio.NewReader(io.TeeReader(conn, &buf)))
		if err == nil {
			_, _ = io.ReadAll(req.Body)
		}
		out <- buf.String()
		if reply != "" {
			_, _ = io.WriteString(conn, reply)
		}
	}()
	return ln.Addr().String(), out
}

func TestClient_Send_WireBytes(t *testing.T) {
	addr, sent := rawServer(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}")

	req := domain.NewRequest(domain.MethodPatch, domain.MustParseURL("http://"+addr+"/users/7"),
		[]domain.Header{{Name: "Authorization", Value: "Bearer t"}}, mustBody(t, `{"a":1}`))
	resp, err := newClient(t).Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != 200 || resp.Body != "{}" {
		t.Errorf("got %d %q", resp.Status, resp.Body)
	}

	want := "PATCH /users/7 HTTP/1.1\r\n" +
		"Host: " + addr + "\r\n" +
		"Content-Length: 7\r\n" +
		"Content-Type: application/json\r\n" +
		"Authorization: Bearer t\r\n" +
		"\r\n" +
		`{"a":1}`
	if got := <-sent; got != want {
		t.Errorf("wire bytes:\ngot  %q\nwant %q", got, want)
	}
}

func TestClient_Send_ServerClosesEarly(t *testing.T) {
	addr, _ := rawServer(t, "")

	_, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("http://"+addr+"/"), nil, nil))
	assertStage(t, err, apperrors.StageReceive)
}

func TestClient_Send_DeadlineBoundsBlockedWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		// Accept and never read, so the client's socket buffers fill up.
		if nc, err := ln.Accept(); err == nil {
			accepted <- nc
		}
	}()
	defer func() {
		select {
		case nc := <-accepted:
			_ = nc.Close()
		default:
		}
	}()

	body := `"` + strings.Repeat("a", 32<<20) + `"`
	req := domain.NewRequest(domain.MethodPost, domain.MustParseURL("http://"+ln.Addr().String()+"/upload"), nil, mustBody(t, body))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = newClient(t).Send(ctx, req)
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Send took %v, want it bounded by the 300ms deadline", elapsed)
	}
	assertStage(t, err, apperrors.StageSend)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want wrapped context.DeadlineExceeded", err)
	}
}

func TestClient_Send_NonUTF8Body(t *testing.T) {
	addr, _ := rawServer(t, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\na\xffb")

	_, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("http://"+addr+"/"), nil, nil))
	if !apperrors.IsResponse(err) {
		t.Fatalf("expected response error, got %v", err)
	}
}

func TestClient_Send_NoHost(t *testing.T) {
	_, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("http:///nohost"), nil, nil))
	assertStage(t, err, apperrors.StageResolve)
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("http://"+addr+"/"), nil, nil))
	assertStage(t, err, apperrors.StageConnect)
}

type countingDialer struct {
	dials atomic.Int32
	net.Dialer
}

func (d *countingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d.dials.Add(1)
	return d.Dialer.DialContext(ctx, network, addr)
}

func TestClient_Send_InvalidHeaderOpensNoConnection(t *testing.T) {
	d := &countingDialer{}
	req := domain.NewRequest(domain.MethodGet, domain.MustParseURL("http://127.0.0.1:1/"),
		[]domain.Header{{Name: "X-Bad", Value: "a\nb"}}, nil)

	_, err := newClient(t, WithDialer(d)).Send(context.Background(), req)
	assertStage(t, err, apperrors.StageBuild)
	if n := d.dials.Load(); n != 0 {
		t.Errorf("dials = %d, want 0", n)
	}
}

func startTLSServer(t *testing.T, certs *tlstest.TLSCerts, h http.Handler) string {
	t.Helper()
	ln := tlstest.Listen(t, certs)
	srv := &http.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })
	return ln.Addr().String()
}

func TestClient_Send_HTTPS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	addr := startTLSServer(t, certs, http.HandlerFunc(echoHandler))

	c := newClient(t, WithTLS(security.TLSConfig{CAFile: certs.CAFile}))
	resp, err := c.Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("https://"+addr+"/secure"), nil, nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	var got echo
	if err := json.Unmarshal([]byte(resp.Body), &got); err != nil {
		t.Fatalf("decode %q: %v", resp.Body, err)
	}
	if got.Path != "/secure" || got.Method != "GET" {
		t.Errorf("server saw %+v", got)
	}
}

func TestClient_Send_UntrustedCertificate(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	addr := startTLSServer(t, certs, http.HandlerFunc(echoHandler))

	_, err := newClient(t).Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("https://"+addr+"/"), nil, nil))
	assertStage(t, err, apperrors.StageTLS)
}

func TestClient_Send_SkipVerify(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	addr := startTLSServer(t, certs, http.HandlerFunc(echoHandler))

	c := newClient(t, WithTLS(security.TLSConfig{SkipVerify: true}))
	resp, err := c.Send(context.Background(),
		domain.NewRequest(domain.MethodGet, domain.MustParseURL("https://"+addr+"/"), nil, nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("status = %d", resp.Status)
	}
}

func TestNew_InvalidTLS(t *testing.T) {
	_, err := New(WithTLS(security.TLSConfig{CAFile: tlstest.WriteInvalidPEM(t, "bad.pem")}))
	if err == nil {
		t.Fatal("expected error for invalid CA file")
	}
}

func assertStage(t *testing.T, err error, stage string) {
	t.Helper()
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if got := mustAppError(t, err).Stage(); got != stage {
		t.Errorf("stage = %q, want %q (err: %v)", got, stage, err)
	}
}
