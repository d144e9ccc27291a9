// Package roon connects the sidecar to the controller core.
//
// It contains the WebSocket transport, the image service adapter and the
// ConnectionSupervisor that drives the pairing lifecycle.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────┐
//	│                       Supervisor                           │
//	│                                                            │
//	│   connect ──▶ register ──▶ subscribe ──▶ (link up)         │
//	│      ▲                                      │              │
//	│      └────────── backoff ◀── pairing loss ◀─┘              │
//	└──────┬─────────────────────┬───────────────────────────────┘
//	       │                     │
//	       ▼                     ▼
//	   Transport            ImageClient
//	   (request/response    (artwork source for
//	    + event dispatch)    the fetcher)
//
// The transport correlates requests and responses by UUID id and dispatches
// server-pushed subscription events on a single goroutine, preserving burst
// order. A dead link is never reused; the supervisor dials a fresh transport
// each cycle and rebinds the image source.
//
// On pairing loss the supervisor clears all derived state (zone and output
// maps, artwork cache), removes the image capability, and tells the host to
// blank its display via the disconnected now-playing sentinel followed by a
// disconnected status. Subscription-level error events on a live link only
// surface as a disconnected status; state is left intact because the core
// re-sends full records once the subscription recovers.
package roon
