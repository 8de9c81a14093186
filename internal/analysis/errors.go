package analysis

import "errors"

var (
	// ErrEmptyInput is returned before any provider call when the input
	// is empty after trimming.
	ErrEmptyInput = errors.New("empty input")
	// ErrMissingRequiredField is returned when a provider payload lacks
	// a field the canonical result cannot do without.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMalformedResponse is returned when a provider payload cannot
	// be parsed as the expected structure.
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrProviderUnavailable is returned on network failures, timeouts
	// and non-success statuses from an external provider.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// Voice pipeline stage errors.
	ErrUploadFailed         = errors.New("audio upload failed")
	ErrSubmissionFailed     = errors.New("transcription submit failed")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrTranscriptionTimeout = errors.New("transcription timed out")
)

const (
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrorCodeSchemaMismatch      = "PROVIDER_SCHEMA_MISMATCH"
	ErrorCodeTranscription       = "TRANSCRIPTION_FAILED"
	ErrorCodeTimeout             = "TRANSCRIPTION_TIMEOUT"
	ErrorCodeInternal            = "INTERNAL_ERROR"
)
