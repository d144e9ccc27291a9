// Package telemetry provides optional playback telemetry via InfluxDB.
//
// When enabled in configuration, the sidecar records zone playback
// transitions, artwork resolution outcomes and connection lifecycle
// events as batched, non-blocking writes. When disabled (the default)
// Connect returns ErrDisabled and the rest of the sidecar runs with a
// nil sink.
//
// Telemetry is an observer, never a participant: no write failure,
// connection loss or slow flush may affect the wire protocol or state
// reconciliation. All writes are fire-and-forget through the InfluxDB
// non-blocking write API, with async errors surfaced only to the
// configured error callback for logging.
package telemetry
