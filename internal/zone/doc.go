// Package zone is the state reconciliation engine of the sidecar.
//
// The Reconciler merges incremental zone and output subscription bursts from
// the Core into a consistent in-memory view, and republishes that view as
// derived snapshots over the wire protocol.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                        Reconciler                            │
//	│                                                              │
//	│  ┌──────────────┐   ┌──────────────┐   ┌──────────────────┐  │
//	│  │  zone map    │   │  output map  │   │    snapshot      │  │
//	│  │ (authorita-  │   │ (unbound     │   │  zone list +     │  │
//	│  │  tive state) │   │  endpoints)  │   │  now-playing     │  │
//	│  └──────┬───────┘   └──────┬───────┘   └────────┬─────────┘  │
//	└─────────│──────────────────│────────────────────│────────────┘
//	          │                  │                    │
//	   ApplyZoneEvent     ApplyOutputEvent            ▼
//	   (bursts from the subscription layer)    protocol.Emitter
//
// # Derivation rules
//
//   - The zone list is the union of one entry per tracked zone and one
//     synthetic "output:<id>" entry per output that no zone references.
//     A real zone and a synthetic entry never coexist for the same output.
//   - Playback states outside {playing, paused, loading} normalise to
//     stopped; the mapping is total and never errors.
//   - Track text comes from the richest of the three now-playing shapes;
//     artwork is resolved through the artwork fetcher and attached as a
//     data URL when available.
//
// # Failure discipline
//
// Missing list fields default to empty, records without ids are dropped
// individually, and a panic during one burst is caught and logged. No burst,
// however malformed, may tear down the subscription.
package zone
