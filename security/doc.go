// Package security builds the TLS client configuration used for https
// requests.
//
//	cfg := security.TLSConfig{CAFile: "/path/to/ca.pem", MinVersion: "1.3"}
//	base, err := cfg.Build()
//	conn := tls.Client(raw, security.ForHost(base, "example.com"))
package security
