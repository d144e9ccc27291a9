// Package config provides configuration loading for Roon Relay.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then ROONRELAY_* environment variables. Unlike most services, a missing
// config file is not an error: the sidecar is designed to run with zero
// configuration and find its Roon Core by discovery, so every setting has a
// working default.
//
// # Sections
//
//   - core: manual Core address (host/port) and reconnect backoff
//   - artwork: cache capacity/TTL and fetch timeout/thumbnail size
//   - telemetry: optional InfluxDB playback telemetry (disabled by default)
//   - logging: level/format/output (output defaults to stderr; stdout
//     belongs to the wire protocol)
package config
