package ai

import "errors"

var (
	// ErrNotConfigured indicates no API key is available.
	ErrNotConfigured = errors.New("gemini api key is not configured")
	// ErrTimeout indicates the model call exceeded its deadline and
	// was cancelled.
	ErrTimeout = errors.New("ai request timed out")
	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("empty ai response")
	// ErrUnavailable indicates the planning service declined or
	// failed the request.
	ErrUnavailable = errors.New("ai plan generation unavailable")
)
