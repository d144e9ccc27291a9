package artwork

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSource is a scriptable image source for tests.
type fakeSource struct {
	mu       sync.Mutex
	requests []string
	respond  func(key string, callback func(contentType string, body []byte, err error))
}

func (s *fakeSource) GetImage(key string, _ ImageOptions, callback func(contentType string, body []byte, err error)) {
	s.mu.Lock()
	s.requests = append(s.requests, key)
	s.mu.Unlock()
	s.respond(key, callback)
}

func (s *fakeSource) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// fakeTelemetry captures resolution outcomes.
type fakeTelemetry struct {
	mu       sync.Mutex
	outcomes []string
}

func (f *fakeTelemetry) RecordArtworkFetch(outcome string, _ time.Duration) {
	f.mu.Lock()
	f.outcomes = append(f.outcomes, outcome)
	f.mu.Unlock()
}

func (f *fakeTelemetry) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.outcomes...)
}

func TestFetch_EmptyKeyResolvesAbsentWithoutSourceCall(t *testing.T) {
	source := &fakeSource{respond: func(string, func(string, []byte, error)) {
		t.Error("source should not be contacted for an empty key")
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)
	f.SetSource(source)

	value, ok := f.Fetch(context.Background(), "")
	if ok || value != "" {
		t.Errorf("Fetch(\"\") = %q, %v; want absent", value, ok)
	}
	if source.requestCount() != 0 {
		t.Errorf("source requests = %d, want 0", source.requestCount())
	}
}

func TestFetch_SuccessEncodesDataURLAndCaches(t *testing.T) {
	body := []byte{0xFF, 0xD8, 0xFF}
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("image/png", body, nil)
	}}
	cache := NewCache(10, time.Hour)
	f := NewFetcher(cache, time.Second, 64)
	f.SetSource(source)

	value, ok := f.Fetch(context.Background(), "img1")
	if !ok {
		t.Fatal("Fetch() resolved absent, want success")
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(body)
	if value != want {
		t.Errorf("Fetch() = %q, want %q", value, want)
	}

	cached, ok := cache.Get("img1")
	if !ok || cached != want {
		t.Errorf("cache entry = %q, %v; want fetched value", cached, ok)
	}
}

func TestFetch_DefaultContentType(t *testing.T) {
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("", []byte{0x01}, nil)
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)
	f.SetSource(source)

	value, ok := f.Fetch(context.Background(), "img1")
	if !ok {
		t.Fatal("Fetch() resolved absent, want success")
	}
	if !strings.HasPrefix(value, "data:image/jpeg;base64,") {
		t.Errorf("Fetch() = %q, want image/jpeg default content type", value)
	}
}

func TestFetch_CacheHitSkipsSource(t *testing.T) {
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("image/jpeg", []byte{0x01}, nil)
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)
	f.SetSource(source)

	first, ok := f.Fetch(context.Background(), "img1")
	if !ok {
		t.Fatal("first Fetch() resolved absent")
	}
	second, ok := f.Fetch(context.Background(), "img1")
	if !ok {
		t.Fatal("second Fetch() resolved absent")
	}
	if first != second {
		t.Errorf("cache hit returned %q, want %q", second, first)
	}
	if source.requestCount() != 1 {
		t.Errorf("source requests = %d, want 1 (second fetch served from cache)", source.requestCount())
	}
}

func TestFetch_SourceErrorResolvesAbsentWithoutCacheWrite(t *testing.T) {
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("", nil, ErrSourceFailed)
	}}
	cache := NewCache(10, time.Hour)
	f := NewFetcher(cache, time.Second, 64)
	f.SetSource(source)

	_, ok := f.Fetch(context.Background(), "img1")
	if ok {
		t.Error("Fetch() resolved present on source error")
	}
	if cache.Size() != 0 {
		t.Errorf("cache size = %d after failed fetch, want 0", cache.Size())
	}
}

func TestFetch_TimeoutThenLateCallbackDoesNotTouchCache(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		go func() {
			<-release
			callback("image/jpeg", []byte{0x01}, nil)
			close(done)
		}()
	}}
	cache := NewCache(10, time.Hour)
	f := NewFetcher(cache, 20*time.Millisecond, 64)
	f.SetSource(source)

	_, ok := f.Fetch(context.Background(), "img2")
	if ok {
		t.Fatal("Fetch() resolved present, want timeout")
	}

	// Let the collaborator answer well after the deadline.
	close(release)
	<-done

	if cache.Size() != 0 {
		t.Errorf("cache size = %d after late callback, want 0", cache.Size())
	}
	if cache.Has("img2") {
		t.Error("late callback populated the cache")
	}
}

func TestFetch_DoubleCallbackSettlesOnce(t *testing.T) {
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("image/jpeg", []byte{0x01}, nil)
		callback("image/jpeg", []byte{0x02}, nil) // misbehaving source
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)
	f.SetSource(source)

	value, ok := f.Fetch(context.Background(), "img1")
	if !ok {
		t.Fatal("Fetch() resolved absent")
	}
	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0x01})
	if value != want {
		t.Errorf("Fetch() = %q, want first callback result", value)
	}
}

func TestFetch_NoSourceResolvesAbsent(t *testing.T) {
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)

	_, ok := f.Fetch(context.Background(), "img1")
	if ok {
		t.Error("Fetch() resolved present with no source installed")
	}
}

func TestFetch_TelemetryRecordsEachOutcome(t *testing.T) {
	source := &fakeSource{respond: func(key string, callback func(string, []byte, error)) {
		switch key {
		case "good":
			callback("image/jpeg", []byte{0x01}, nil)
		case "bad":
			callback("", nil, ErrSourceFailed)
		case "slow":
			// Never answers; the deadline settles the fetch.
		}
	}}
	sink := &fakeTelemetry{}
	f := NewFetcher(NewCache(10, time.Hour), 20*time.Millisecond, 64)
	f.SetSource(source)
	f.SetTelemetry(sink)

	f.Fetch(context.Background(), "good") // fetched
	f.Fetch(context.Background(), "good") // hit
	f.Fetch(context.Background(), "bad")  // failed
	f.Fetch(context.Background(), "slow") // timeout

	want := []string{"fetched", "hit", "failed", "timeout"}
	got := sink.recorded()
	if len(got) != len(want) {
		t.Fatalf("recorded outcomes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("outcome %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFetch_NoTelemetrySinkIsSafe(t *testing.T) {
	source := &fakeSource{respond: func(_ string, callback func(string, []byte, error)) {
		callback("image/jpeg", []byte{0x01}, nil)
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Second, 64)
	f.SetSource(source)

	if _, ok := f.Fetch(context.Background(), "img1"); !ok {
		t.Error("Fetch() resolved absent with no telemetry sink installed")
	}
}

func TestFetch_ContextCancellation(t *testing.T) {
	source := &fakeSource{respond: func(string, func(string, []byte, error)) {
		// Never answers.
	}}
	f := NewFetcher(NewCache(10, time.Hour), time.Hour, 64)
	f.SetSource(source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := f.Fetch(ctx, "img1")
	if ok {
		t.Error("Fetch() resolved present on cancelled context")
	}
}
