// Package config loads hurl configuration from a YAML file, a .env file,
// HURL_* environment variables and command-line flags.
//
// Precedence, highest first: changed flags, environment, config file,
// flag defaults.
//
//	var cfg cli.Config
//	err := config.LoadConfig("hurl", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithFlags(fs, map[string]string{"client.retries": "retries"}))
//
// Named profiles live under the "profiles" key; see Profiles.
package config
