package roon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/roon-relay/internal/artwork"
)

// defaultImageTimeout bounds one image request on the link. The artwork
// fetcher applies its own deadline on top; this one only stops the request
// goroutine from lingering when the fetcher has already given up.
const defaultImageTimeout = 15 * time.Second

// requester is the request/response surface of the transport.
type requester interface {
	Request(ctx context.Context, service, name string, body any) (frame, error)
}

// ImageClient adapts the core image service to the artwork fetcher's source
// contract. One instance is created per paired session and discarded with it.
// Failures are reported through the callback; the fetcher owns the logging.
type ImageClient struct {
	transport requester
	timeout   time.Duration
}

// NewImageClient creates an ImageClient on an established transport.
// A non-positive timeout falls back to the default.
func NewImageClient(transport requester, timeout time.Duration) *ImageClient {
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &ImageClient{
		transport: transport,
		timeout:   timeout,
	}
}

// GetImage requests one artwork rendition and invokes callback exactly once
// with the result. The request runs on its own goroutine; the callback fires
// whenever the response lands, which may be after the caller stopped waiting.
func (c *ImageClient) GetImage(key string, opts artwork.ImageOptions, callback func(contentType string, body []byte, err error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		resp, err := c.transport.Request(ctx, ServiceImage, VerbGetImage, imageRequest{
			ImageKey: key,
			Options:  opts,
		})
		if err != nil {
			callback("", nil, err)
			return
		}

		if resp.Name != resultSuccess {
			var failure errorBody
			//nolint:errcheck // A body that won't parse leaves the message empty
			json.Unmarshal(resp.Body, &failure)
			callback("", nil, fmt.Errorf("image service: %s: %s", resp.Name, failure.Message))
			return
		}

		var body imageResponse
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			callback("", nil, fmt.Errorf("parsing image response: %w", err))
			return
		}

		callback(body.ContentType, body.Image, nil)
	}()
}
