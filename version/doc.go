// Package version reports hurl's build version.
//
// Values are injected at build time:
//
//	go build -ldflags "-X github.com/kbukum/hurl/version.Version=1.2.0 \
//	    -X github.com/kbukum/hurl/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Anything left unset falls back to the module build info.
package version
