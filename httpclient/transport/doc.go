// Package transport sends one domain.Request over a fresh HTTP/1.1
// connection and returns the domain.Response.
//
// Every Send resolves the endpoint, dials TCP, performs a TLS handshake for
// https, starts a Conn whose background driver reads responses, writes the
// request and waits for the fully buffered reply. Connections are never
// reused.
//
//	c, err := transport.New(transport.WithTLS(security.TLSConfig{CAFile: "ca.pem"}))
//	resp, err := c.Send(ctx, req)
package transport
