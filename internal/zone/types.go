package zone

import "github.com/nerrad567/roon-relay/internal/protocol"

// Zone is a logical playback group as reported by the Core.
//
// A zone record is replaced wholesale on every change event for its id;
// there is no partial-field merge.
type Zone struct {
	ZoneID      string      `json:"zone_id"`
	DisplayName string      `json:"display_name"`
	State       string      `json:"state"`
	Outputs     []Output    `json:"outputs"`
	NowPlaying  *NowPlaying `json:"now_playing"`
}

// Output is a physical or logical audio endpoint. It may be bound to a zone
// (ZoneID non-empty) or stand alone in standby.
type Output struct {
	OutputID    string `json:"output_id"`
	ZoneID      string `json:"zone_id"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// NowPlaying carries the display text and artwork reference for the current
// track. The three shapes are mutually exclusive alternatives ordered by
// richness; extraction takes the richest one present.
type NowPlaying struct {
	ThreeLine *ThreeLine `json:"three_line"`
	TwoLine   *TwoLine   `json:"two_line"`
	OneLine   *OneLine   `json:"one_line"`
	ImageKey  string     `json:"image_key"`
}

// ThreeLine is title / artist / album.
type ThreeLine struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
	Line3 string `json:"line3"`
}

// TwoLine is title / artist.
type TwoLine struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// OneLine is title only.
type OneLine struct {
	Line1 string `json:"line1"`
}

// NormalizeState maps a Core-reported playback state onto the wire-protocol
// state set. It is total: anything unrecognised (including empty) is stopped.
func NormalizeState(state string) string {
	switch state {
	case "playing":
		return protocol.StatePlaying
	case "paused":
		return protocol.StatePaused
	case "loading":
		return protocol.StateLoading
	default:
		return protocol.StateStopped
	}
}
