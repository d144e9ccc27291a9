package artwork

import "errors"

// Domain-specific errors for artwork operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNoSource is returned when a fetch is attempted before an image
	// source has been installed (i.e. before pairing).
	ErrNoSource = errors.New("artwork: no image source installed")

	// ErrFetchTimeout is returned when the image source does not respond
	// within the fetch deadline.
	ErrFetchTimeout = errors.New("artwork: fetch timed out")

	// ErrSourceFailed is returned when the image source reports an error
	// for a requested key.
	ErrSourceFailed = errors.New("artwork: image source reported failure")
)
