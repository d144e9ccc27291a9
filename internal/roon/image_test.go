package roon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/roon-relay/internal/artwork"
)

// fakeRequester answers every request with a canned frame or error.
type fakeRequester struct {
	resp frame
	err  error

	requests chan frame
}

func (f *fakeRequester) Request(_ context.Context, service, name string, body any) (frame, error) {
	if f.requests != nil {
		raw, _ := json.Marshal(body)
		f.requests <- frame{Service: service, Name: name, Body: raw}
	}
	return f.resp, f.err
}

type imageResult struct {
	contentType string
	body        []byte
	err         error
}

func fetchImage(t *testing.T, client *ImageClient, key string) imageResult {
	t.Helper()

	results := make(chan imageResult, 1)
	client.GetImage(key, artwork.ImageOptions{Scale: "fit", Width: 64, Height: 64, Format: "image/jpeg"},
		func(contentType string, body []byte, err error) {
			results <- imageResult{contentType: contentType, body: body, err: err}
		})

	select {
	case res := <-results:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for image callback")
		return imageResult{}
	}
}

func TestImageClient_Success(t *testing.T) {
	raw := []byte("png-bytes")
	body, _ := json.Marshal(imageResponse{ContentType: "image/png", Image: raw})
	requester := &fakeRequester{
		resp:     frame{Type: frameResponse, Name: resultSuccess, Body: body},
		requests: make(chan frame, 1),
	}

	client := NewImageClient(requester, time.Second)
	res := fetchImage(t, client, "img1")

	if res.err != nil {
		t.Fatalf("callback error = %v", res.err)
	}
	if res.contentType != "image/png" {
		t.Errorf("content type = %q, want image/png", res.contentType)
	}
	if string(res.body) != string(raw) {
		t.Errorf("body = %q, want %q", res.body, raw)
	}

	req := <-requester.requests
	if req.Service != ServiceImage || req.Name != VerbGetImage {
		t.Errorf("request = %s/%s, want %s/%s", req.Service, req.Name, ServiceImage, VerbGetImage)
	}
	var sent imageRequest
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("unmarshalling sent request: %v", err)
	}
	if sent.ImageKey != "img1" || sent.Options.Width != 64 {
		t.Errorf("sent request = %+v, want key img1 with 64px options", sent)
	}
}

func TestImageClient_Base64OnTheWire(t *testing.T) {
	// The image field is standard base64 in the response JSON.
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	body := []byte(`{"content_type":"image/png","image":"` + base64.StdEncoding.EncodeToString(raw) + `"}`)
	requester := &fakeRequester{resp: frame{Type: frameResponse, Name: resultSuccess, Body: body}}

	client := NewImageClient(requester, time.Second)
	res := fetchImage(t, client, "img1")

	if res.err != nil {
		t.Fatalf("callback error = %v", res.err)
	}
	if len(res.body) != len(raw) || res.body[0] != 0x89 {
		t.Errorf("body = %v, want decoded %v", res.body, raw)
	}
}

func TestImageClient_ServiceFailure(t *testing.T) {
	body, _ := json.Marshal(errorBody{Message: "no such image"})
	requester := &fakeRequester{resp: frame{Type: frameResponse, Name: "Failure", Body: body}}

	client := NewImageClient(requester, time.Second)
	res := fetchImage(t, client, "missing")

	if res.err == nil {
		t.Fatal("callback error = nil, want failure")
	}
	if res.body != nil {
		t.Errorf("body = %v, want nil on failure", res.body)
	}
}

func TestImageClient_TransportError(t *testing.T) {
	requester := &fakeRequester{err: ErrClosed}

	client := NewImageClient(requester, time.Second)
	res := fetchImage(t, client, "img1")

	if !errors.Is(res.err, ErrClosed) {
		t.Errorf("callback error = %v, want ErrClosed", res.err)
	}
}
