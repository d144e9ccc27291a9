// Package artwork caches and fetches album artwork for zone now-playing
// display.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Fetcher                           │
//	│                                                          │
//	│   empty key ──▶ absent                                   │
//	│   cache hit ──▶ cached data URL                          │
//	│   cache miss ─▶ one Source request raced against a       │
//	│                 deadline; winner settles the fetch       │
//	└───────────────┬──────────────────────┬───────────────────┘
//	                │                      │
//	                ▼                      ▼
//	        ┌──────────────┐       ┌──────────────────┐
//	        │    Cache     │       │      Source      │
//	        │  LRU + TTL   │       │ (pairing layer)  │
//	        └──────────────┘       └──────────────────┘
//
// The Cache bounds memory (LRU, capacity 100) and staleness (1-hour TTL,
// checked lazily on lookup). The Fetcher wraps the collaborator-supplied
// Source in a timeout race so a stalled Core can never wedge the event flow,
// and guarantees a late response cannot populate the cache or resolve a
// fetch twice.
//
// Image keys are opaque and scoped to one Core pairing; Clear() must be
// called when pairing is lost.
package artwork
