package zone

// EventKind tags a subscription burst from the Core.
type EventKind string

// Burst kinds as delivered by the zone/output subscription services.
// NetworkError and ConnectionError never reach the Reconciler; the
// supervisor converts them to status messages without touching state.
const (
	EventSubscribed      EventKind = "Subscribed"
	EventChanged         EventKind = "Changed"
	EventNetworkError    EventKind = "NetworkError"
	EventConnectionError EventKind = "ConnectionError"
)

// ZoneBurst is one zone subscription notification. Any combination of the
// list fields may be present; missing fields decode as empty lists and are
// tolerated field-by-field.
//
// A burst carrying only seek-position deltas mutates nothing: seek position
// is not part of the modelled state.
type ZoneBurst struct {
	Zones            []Zone       `json:"zones"`
	ZonesAdded       []Zone       `json:"zones_added"`
	ZonesChanged     []Zone       `json:"zones_changed"`
	ZonesRemoved     []string     `json:"zones_removed"`
	ZonesSeekChanged []SeekChange `json:"zones_seek_changed"`
}

// SeekChange is a seek-position delta for one zone. Received and ignored.
type SeekChange struct {
	ZoneID       string  `json:"zone_id"`
	SeekPosition float64 `json:"seek_position"`
}

// OutputBurst is one output subscription notification, symmetric with
// ZoneBurst.
type OutputBurst struct {
	Outputs        []Output `json:"outputs"`
	OutputsAdded   []Output `json:"outputs_added"`
	OutputsChanged []Output `json:"outputs_changed"`
	OutputsRemoved []string `json:"outputs_removed"`
}

// upserts returns every full zone record carried by the burst, in order.
func (b ZoneBurst) upserts() []Zone {
	records := make([]Zone, 0, len(b.Zones)+len(b.ZonesAdded)+len(b.ZonesChanged))
	records = append(records, b.Zones...)
	records = append(records, b.ZonesAdded...)
	records = append(records, b.ZonesChanged...)
	return records
}

// upserts returns every full output record carried by the burst, in order.
func (b OutputBurst) upserts() []Output {
	records := make([]Output, 0, len(b.Outputs)+len(b.OutputsAdded)+len(b.OutputsChanged))
	records = append(records, b.Outputs...)
	records = append(records, b.OutputsAdded...)
	records = append(records, b.OutputsChanged...)
	return records
}
