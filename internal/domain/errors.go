package domain

import "errors"

// Error taxonomy shared by every layer. Callers wrap these with fmt.Errorf("...: %w")
// and match them with errors.Is.
var (
	// ErrInvalidURL rejects malformed input or a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid url")

	// ErrRemoteUnavailable marks a failed subscription or remote write.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrUnauthenticated is returned when no owner identity exists yet.
	ErrUnauthenticated = errors.New("no owner identity")

	// ErrEmptyInput marks a no-op request (blank note, blank prompt).
	ErrEmptyInput = errors.New("empty input")

	ErrNotFound        = errors.New("not found")
	ErrInvalidField    = errors.New("invalid field")
	ErrUnknownCategory = errors.New("unknown category")
	ErrCrossCategory   = errors.New("reorder across categories is not supported")
	ErrUnsupported     = errors.New("capability not available")
)
