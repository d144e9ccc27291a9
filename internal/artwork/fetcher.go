package artwork

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// defaultFetchTimeout bounds how long a fetch waits for the image source.
const defaultFetchTimeout = 10 * time.Second

// defaultContentType is assumed when the source does not report one.
const defaultContentType = "image/jpeg"

// ImageOptions are the fixed request options sent with every image request:
// a fit-scaled thumbnail sized for a small status-icon display.
type ImageOptions struct {
	Scale  string `json:"scale"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Source is the image-fetch capability supplied by the pairing layer.
//
// GetImage issues one request for the artwork identified by key and invokes
// the callback exactly once with either the content type and raw bytes or an
// error. The callback may be invoked from any goroutine, at any time,
// including after the caller has given up waiting.
type Source interface {
	GetImage(key string, opts ImageOptions, callback func(contentType string, body []byte, err error))
}

// Logger defines the logging interface used by the Fetcher.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Telemetry records artwork resolution outcomes. Optional; satisfied by
// telemetry.Client.
type Telemetry interface {
	RecordArtworkFetch(outcome string, elapsed time.Duration)
}

// Resolution outcomes reported to telemetry.
const (
	outcomeHit     = "hit"
	outcomeFetched = "fetched"
	outcomeTimeout = "timeout"
	outcomeFailed  = "failed"
)

// Fetcher resolves image keys to data URLs through a Source, memoised in a
// Cache and guarded by a deadline.
//
// Each Fetch races one collaborator request against the timeout; whichever
// fires first settles the operation, and the loser is discarded. A late
// source callback after the deadline never mutates the cache and never
// resolves an already-settled fetch a second time.
//
// Concurrent fetches for different keys may be in flight simultaneously.
// Fetches for the same key are not deduplicated: each call races its own
// timeout.
type Fetcher struct {
	cache   *Cache
	timeout time.Duration
	opts    ImageOptions
	logger  Logger

	telemetry Telemetry

	// source is installed on pairing and removed on unpairing.
	source   Source
	sourceMu sync.RWMutex
}

// fetchResult is the settled outcome of one source request.
type fetchResult struct {
	contentType string
	body        []byte
	err         error
}

// NewFetcher creates a Fetcher backed by cache.
// A non-positive timeout falls back to the 10-second default; a zero
// thumbnail size falls back to 64px.
func NewFetcher(cache *Cache, timeout time.Duration, thumbnailSize int) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if thumbnailSize <= 0 {
		thumbnailSize = 64
	}
	return &Fetcher{
		cache:   cache,
		timeout: timeout,
		opts: ImageOptions{
			Scale:  "fit",
			Width:  thumbnailSize,
			Height: thumbnailSize,
			Format: "image/jpeg",
		},
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for fetch diagnostics.
func (f *Fetcher) SetLogger(logger Logger) {
	f.logger = logger
}

// SetTelemetry installs an optional artwork telemetry sink.
func (f *Fetcher) SetTelemetry(t Telemetry) {
	f.telemetry = t
}

// SetSource installs the image-fetch capability. Pass nil on unpairing.
func (f *Fetcher) SetSource(source Source) {
	f.sourceMu.Lock()
	f.source = source
	f.sourceMu.Unlock()
}

// Fetch resolves imageKey to a data URL.
//
// An empty key resolves immediately to absent without contacting the source.
// A cache hit resolves immediately to the cached value. Otherwise one source
// request is raced against the deadline; on success the result is cached and
// returned, on source error or timeout the fetch resolves to absent.
//
// Returns:
//   - string: data URL, or "" when absent
//   - bool: whether artwork was resolved
func (f *Fetcher) Fetch(ctx context.Context, imageKey string) (string, bool) {
	if imageKey == "" {
		return "", false
	}

	start := time.Now()

	if value, ok := f.cache.Get(imageKey); ok {
		f.logger.Debug("artwork cache hit", "image_key", imageKey)
		f.record(outcomeHit, start)
		return value, true
	}

	f.sourceMu.RLock()
	source := f.source
	f.sourceMu.RUnlock()
	if source == nil {
		f.logger.Warn("artwork fetch skipped", "image_key", imageKey, "error", ErrNoSource)
		return "", false
	}

	// Buffered so a late callback can settle without a receiver; the Once
	// guarantees the callback's effect happens at most once even if the
	// source misbehaves and calls back twice.
	resultCh := make(chan fetchResult, 1)
	var settle sync.Once
	source.GetImage(imageKey, f.opts, func(contentType string, body []byte, err error) {
		settle.Do(func() {
			resultCh <- fetchResult{contentType: contentType, body: body, err: err}
		})
	})

	timer := time.NewTimer(f.timeout)
	defer timer.Stop() // disarm exactly once, whether we won or lost the race

	select {
	case result := <-resultCh:
		if result.err != nil {
			f.logger.Warn("artwork fetch failed", "image_key", imageKey,
				"error", fmt.Errorf("%w: %w", ErrSourceFailed, result.err))
			f.record(outcomeFailed, start)
			return "", false
		}
		value := encodeDataURL(result.contentType, result.body)
		f.cache.Set(imageKey, value)
		f.logger.Debug("artwork fetched", "image_key", imageKey, "bytes", len(result.body))
		f.record(outcomeFetched, start)
		return value, true

	case <-timer.C:
		// The fetch is settled as absent here; a source callback arriving
		// later finds no receiver and its buffered result is dropped with
		// the channel. It can no longer reach the cache.
		f.logger.Warn("artwork fetch timed out", "image_key", imageKey,
			"timeout", f.timeout, "error", ErrFetchTimeout)
		f.record(outcomeTimeout, start)
		return "", false

	case <-ctx.Done():
		f.logger.Debug("artwork fetch cancelled", "image_key", imageKey)
		return "", false
	}
}

// record reports one resolution outcome when a telemetry sink is installed.
func (f *Fetcher) record(outcome string, start time.Time) {
	if f.telemetry != nil {
		f.telemetry.RecordArtworkFetch(outcome, time.Since(start))
	}
}

// encodeDataURL wraps raw image bytes as a base64 data URL.
func encodeDataURL(contentType string, body []byte) string {
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
}
