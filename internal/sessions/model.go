package sessions

import (
	"time"

	"wellness-backend/internal/analysis"
)

// SessionRecord is one completed assessment saved to history.
type SessionRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Type      string          `json:"type"`
	InputKey  string          `json:"inputKey,omitempty"`
	Analysis  analysis.Result `json:"analysis"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StressTrendPoint is one sample in the stress-over-time series.
type StressTrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	StressScore float64   `json:"stressScore"`
}
