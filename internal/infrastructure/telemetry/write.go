package telemetry

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordZoneState writes a playback-state transition for one zone.
//
// This is the primary measurement: one point per now-playing emission,
// tagged by zone so dashboards can chart listening activity per room.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - zoneID: Zone identifier assigned by the Core
//   - displayName: Human-readable zone name
//   - state: Normalised playback state (playing, paused, loading, stopped)
func (c *Client) RecordZoneState(zoneID, displayName, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"zone_state",
		map[string]string{
			"zone_id": zoneID,
			"zone":    displayName,
			"state":   state,
		},
		map[string]interface{}{
			"value": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordArtworkFetch writes the outcome of one artwork resolution.
//
// Tags distinguish cache hits, fetches, timeouts and failures so cache
// sizing can be tuned from real traffic.
//
// Parameters:
//   - outcome: One of "hit", "fetched", "timeout", "failed"
//   - elapsed: Time spent resolving the image
func (c *Client) RecordArtworkFetch(outcome string, elapsed time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"artwork_fetch",
		map[string]string{
			"outcome": outcome,
		},
		map[string]interface{}{
			"elapsed_ms": float64(elapsed.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordConnection writes a connection lifecycle event.
//
// Parameters:
//   - event: One of "connected", "disconnected", "not_authorized", "reconnecting"
func (c *Client) RecordConnection(event string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"connection",
		map[string]string{
			"event": event,
		},
		map[string]interface{}{
			"value": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
