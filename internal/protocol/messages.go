package protocol

// Message type discriminators. Every wire message carries exactly one of
// these in its "type" field.
const (
	TypeNowPlaying = "now_playing"
	TypeZoneList   = "zone_list"
	TypeStatus     = "status"
	TypeError      = "error"
)

// Playback states as they appear on the wire.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateLoading = "loading"
	StateStopped = "stopped"
)

// Connection status states as they appear on the wire.
const (
	StatusDiscovering   = "discovering"
	StatusNotAuthorized = "not_authorized"
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
)

// DisconnectedZoneID is the sentinel zone id sent in a NowPlaying message
// when pairing with the Core is lost. The host process treats it as a signal
// to drop its current-track display rather than as a real zone.
const DisconnectedZoneID = "__disconnected__"

// NowPlaying reports the current track for a single zone.
//
// Artwork, when present, is a data URL (data:<mime>;base64,...). It is
// omitted entirely when no artwork could be resolved, never null.
type NowPlaying struct {
	Type    string `json:"type"`
	ZoneID  string `json:"zone_id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	State   string `json:"state"`
	Artwork string `json:"artwork,omitempty"`
}

// ZoneList reports every zone currently known, including synthetic entries
// for outputs that are not part of any zone.
type ZoneList struct {
	Type  string     `json:"type"`
	Zones []ZoneInfo `json:"zones"`
}

// ZoneInfo is a single entry in a ZoneList message.
type ZoneInfo struct {
	ZoneID      string     `json:"zone_id"`
	DisplayName string     `json:"display_name"`
	State       string     `json:"state"`
	NowPlaying  *TrackInfo `json:"now_playing,omitempty"`
}

// TrackInfo carries track display text inside a ZoneInfo.
type TrackInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Status reports the connection state of the sidecar.
type Status struct {
	Type    string `json:"type"`
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

// Error reports a sidecar-internal failure to the host process.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewNowPlaying builds a NowPlaying message with the type field set.
func NewNowPlaying(zoneID, title, artist, album, state, artwork string) NowPlaying {
	return NowPlaying{
		Type:    TypeNowPlaying,
		ZoneID:  zoneID,
		Title:   title,
		Artist:  artist,
		Album:   album,
		State:   state,
		Artwork: artwork,
	}
}

// NewZoneList builds a ZoneList message with the type field set.
func NewZoneList(zones []ZoneInfo) ZoneList {
	return ZoneList{
		Type:  TypeZoneList,
		Zones: zones,
	}
}

// NewStatus builds a Status message with the type field set.
func NewStatus(state, message string) Status {
	return Status{
		Type:    TypeStatus,
		State:   state,
		Message: message,
	}
}

// NewError builds an Error message with the type field set.
func NewError(message string) Error {
	return Error{
		Type:    TypeError,
		Message: message,
	}
}

// DisconnectedNowPlaying is the stopped/empty NowPlaying message emitted on
// pairing loss, carrying the sentinel zone id.
func DisconnectedNowPlaying() NowPlaying {
	return NewNowPlaying(DisconnectedZoneID, "", "", "", StateStopped, "")
}
