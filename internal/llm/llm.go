package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts text-understanding providers that score a unit of
// text for emotional state and stress.
type Client interface {
	Analyze(ctx context.Context, input AnalyzeInput) (json.RawMessage, error)
}

// AnalyzeInput captures the inputs needed for a scoring request.
type AnalyzeInput struct {
	// Text is the unit of text to score. For voice it is the transcript;
	// for face it is a synthetic prompt carrying the expression label.
	Text string
	// Modality tags which input kind the text originated from.
	Modality string
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("text-understanding provider not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Analyze returns ErrNotConfigured.
func (PlaceholderClient) Analyze(ctx context.Context, input AnalyzeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotConfigured
}
