package transport

import (
	"fmt"
	"net"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
)

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// Endpoint is the network destination of a request.
type Endpoint struct {
	Scheme string
	Host   string // ASCII host name or IP literal, without brackets
	Port   string
}

// Resolve derives the endpoint from u: the explicit port when present,
// otherwise 443 for https and 80 for anything else.
func Resolve(u domain.URL) (Endpoint, error) {
	host := u.Hostname()
	if host == "" {
		return Endpoint{}, apperrors.Transport(apperrors.StageResolve,
			fmt.Errorf("no host in URL %q", u.String()))
	}
	ascii, err := httpguts.PunycodeHostPort(host)
	if err != nil {
		return Endpoint{}, apperrors.Transport(apperrors.StageResolve, err)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if p, ok := defaultPorts[u.Scheme()]; ok {
			port = p
		}
	}
	return Endpoint{Scheme: u.Scheme(), Host: ascii, Port: port}, nil
}

// Address returns host:port for dialing.
func (e Endpoint) Address() string { return net.JoinHostPort(e.Host, e.Port) }

// Secure reports whether the endpoint needs TLS.
func (e Endpoint) Secure() bool { return e.Scheme == "https" }
