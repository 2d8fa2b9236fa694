// Package logger provides structured logging for hurl using zerolog.
//
// Logs go to stderr by default so that stdout carries nothing but response
// bodies. The console format colors level tags only when the output is a
// terminal.
//
// # Configuration
//
//	logging:
//	  level: "warn"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("transport")
//	log.Debug("connected", logger.Fields(logger.FieldHost, host))
package logger
