package roon

import (
	"encoding/json"

	"github.com/nerrad567/roon-relay/internal/artwork"
)

// Frame types on the core WebSocket link.
const (
	frameRequest  = "request"
	frameResponse = "response"
	frameEvent    = "event"
)

// Services addressed over the link.
const (
	ServiceRegistry = "registry"
	ServiceZones    = "transport/zones"
	ServiceOutputs  = "transport/outputs"
	ServiceImage    = "image"
)

// Request verbs.
const (
	VerbRegister  = "register"
	VerbSubscribe = "subscribe"
	VerbGetImage  = "get_image"
)

// Response result names.
const (
	resultRegistered    = "Registered"
	resultNotAuthorized = "NotAuthorized"
	resultSuccess       = "Success"
)

// frame is the envelope for every message on the link. Requests carry a
// UUID id echoed back on the matching response; events carry no id and are
// routed by service.
type frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Service string          `json:"service,omitempty"`
	Name    string          `json:"name,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// registerRequest is the extension identity presented to the core.
type registerRequest struct {
	ExtensionID    string `json:"extension_id"`
	DisplayName    string `json:"display_name"`
	DisplayVersion string `json:"display_version"`
	Publisher      string `json:"publisher"`
	Email          string `json:"email"`
}

// registeredBody is the payload of a Registered response.
type registeredBody struct {
	CoreID   string `json:"core_id"`
	CoreName string `json:"display_name"`
}

// imageRequest asks the image service for one artwork rendition.
type imageRequest struct {
	ImageKey string               `json:"image_key"`
	Options  artwork.ImageOptions `json:"options"`
}

// imageResponse is the payload of a successful image response. Image is
// base64 on the wire and decoded by encoding/json.
type imageResponse struct {
	ContentType string `json:"content_type"`
	Image       []byte `json:"image"`
}

// errorBody is the payload of a failure response.
type errorBody struct {
	Message string `json:"message"`
}
