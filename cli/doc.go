// Package cli implements the hurl command line.
//
//	hurl [flags] <url> [<url>...]
//
// One URL sends a single request, retried when --retries is set. Several
// URLs send the same method, headers and body to each as a concurrent batch,
// printing the responses in argument order.
//
// Settings resolve in the order flag > HURL_* environment > config file >
// default. The config file is ./hurl.yml or <user config dir>/hurl/config.yml
// unless --config names one:
//
//	logging:
//	  level: info
//	client:
//	  retries: 2
//	  timeout: 30s
//	  tls:
//	    ca_file: /etc/hurl/ca.pem
//	profiles:
//	  staging:
//	    headers: ["Authorization: Bearer xyz"]
//	    retries: 3
package cli
