// Package logging provides structured logging for Roon Relay.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire sidecar.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Why stderr
//
// The sidecar speaks its line-delimited JSON protocol on stdout; the host
// process parses every stdout line as a protocol message. Logs therefore go
// to stderr, which the host relays into its own log. The output setting only
// exists to flip this in isolated debugging sessions.
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting sidecar", "core", "192.168.1.50:9330")
//	logger.Error("artwork fetch failed", "error", err)
package logging
