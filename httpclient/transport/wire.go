package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http/httputil"
	"net/textproto"
	"strconv"
	"strings"
)

// WireResponse is a fully read HTTP/1.1 response.
type WireResponse struct {
	Proto      string
	StatusCode int
	Status     string
	Header     textproto.MIMEHeader
	Body       []byte
}

// writeRequest writes the request line, Host, Content-Length, the remaining
// headers and the body, then flushes:
//
//	POST /items HTTP/1.1\r\n
//	Host: example.com\r\n
//	Content-Length: 7\r\n
//	Content-Type: application/json\r\n
//	\r\n
//	{"a":1}
func writeRequest(w *bufio.Writer, r *WireRequest) error {
	w.WriteString(r.Method)
	w.WriteByte(' ')
	w.WriteString(r.Target)
	w.WriteString(" HTTP/1.1\r\n")

	w.WriteString("Host: ")
	w.WriteString(r.Host)
	w.WriteString("\r\n")
	if r.ContentLength >= 0 {
		w.WriteString("Content-Length: ")
		w.WriteString(strconv.Itoa(r.ContentLength))
		w.WriteString("\r\n")
	}
	for _, h := range r.Header {
		w.WriteString(h.Name)
		w.WriteString(": ")
		w.WriteString(h.Value)
		w.WriteString("\r\n")
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	if len(r.Body) > 0 {
		if _, err := w.Write(r.Body); err != nil {
			return err
		}
	}
	return w.Flush()
}

var errMalformedResponse = errors.New("malformed HTTP response")

// readResponse reads one final response for a request made with method.
// Interim 1xx responses are skipped.
func readResponse(br *bufio.Reader, method string) (*WireResponse, error) {
	tp := textproto.NewReader(br)
	for {
		resp, err := readHead(tp)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != 101 {
			continue
		}
		if err := readBody(br, tp, resp, method); err != nil {
			return nil, err
		}
		return resp, nil
	}
}

func readHead(tp *textproto.Reader) (*WireResponse, error) {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/1.") {
		return nil, fmt.Errorf("%w: status line %q", errMalformedResponse, line)
	}
	status = strings.TrimLeft(status, " ")
	code, _, _ := strings.Cut(status, " ")
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: status code %q", errMalformedResponse, code)
	}
	statusCode, err := strconv.Atoi(code)
	if err != nil || statusCode < 100 {
		return nil, fmt.Errorf("%w: status code %q", errMalformedResponse, code)
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &WireResponse{Proto: proto, StatusCode: statusCode, Status: status, Header: header}, nil
}

func readBody(br *bufio.Reader, tp *textproto.Reader, resp *WireResponse, method string) error {
	if method == "HEAD" || resp.StatusCode == 204 || resp.StatusCode == 304 || resp.StatusCode < 200 {
		return nil
	}

	if isChunked(resp.Header) {
		body, err := io.ReadAll(httputil.NewChunkedReader(br))
		if err != nil {
			return err
		}
		// Trailers end with an empty line.
		if _, err := tp.ReadMIMEHeader(); err != nil && err != io.EOF {
			return err
		}
		resp.Body = body
		return nil
	}

	cl, err := contentLength(resp.Header)
	if err != nil {
		return err
	}
	if cl < 0 {
		// No framing: the body runs until the peer closes.
		resp.Body, err = io.ReadAll(br)
		return err
	}
	resp.Body, err = io.ReadAll(io.LimitReader(br, cl))
	if err != nil {
		return err
	}
	if int64(len(resp.Body)) < cl {
		return fmt.Errorf("body is %d bytes, Content-Length is %d: %w", len(resp.Body), cl, io.ErrUnexpectedEOF)
	}
	return nil
}

func isChunked(h textproto.MIMEHeader) bool {
	te := h.Values("Transfer-Encoding")
	if len(te) == 0 {
		return false
	}
	last := te[len(te)-1]
	if i := strings.LastIndexByte(last, ','); i >= 0 {
		last = last[i+1:]
	}
	return strings.EqualFold(textproto.TrimString(last), "chunked")
}

// contentLength returns -1 when the header is absent. Differing duplicate
// values are rejected.
func contentLength(h textproto.MIMEHeader) (int64, error) {
	values := h.Values("Content-Length")
	if len(values) == 0 {
		return -1, nil
	}
	first := textproto.TrimString(values[0])
	for _, v := range values[1:] {
		if textproto.TrimString(v) != first {
			return 0, fmt.Errorf("%w: conflicting Content-Length values %q", errMalformedResponse, values)
		}
	}
	n, err := strconv.ParseInt(first, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid Content-Length %q", errMalformedResponse, first)
	}
	return n, nil
}
