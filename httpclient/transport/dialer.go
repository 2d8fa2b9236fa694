package transport

import (
	"context"
	"crypto/tls"
	"net"

	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/security"
)

// ContextDialer opens network connections. *net.Dialer implements it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// connect opens a TCP stream to ep and, for https, completes a TLS
// handshake that verifies ep.Host.
func connect(ctx context.Context, d ContextDialer, base *tls.Config, ep Endpoint) (net.Conn, error) {
	conn, err := d.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		return nil, apperrors.Transport(apperrors.StageConnect, err)
	}
	if !ep.Secure() {
		return conn, nil
	}

	cfg := security.ForHost(base, ep.Host)
	cfg.NextProtos = []string{"http/1.1"}
	tc := tls.Client(conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, apperrors.Transport(apperrors.StageTLS, err)
	}
	return tc, nil
}
