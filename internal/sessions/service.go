package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"wellness-backend/internal/analysis"
	"wellness-backend/internal/shared/telemetry"
)

const defaultTrendLimit = 50

// SaveInput carries everything needed to record one assessment.
type SaveInput struct {
	UserID   string
	Type     string
	InputKey string
	Analysis analysis.Result
	Notes    string
}

// Service applies session history rules on top of a Repo.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// Save validates and persists one assessment, assigning the identifier
// and timestamp server-side.
func (s *Service) Save(ctx context.Context, input SaveInput) (SessionRecord, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return SessionRecord{}, fmt.Errorf("%w: userId is required", ErrInvalidRecord)
	}
	if !analysis.Modality(input.Type).Valid() {
		return SessionRecord{}, fmt.Errorf("%w: unknown session type %q", ErrInvalidRecord, input.Type)
	}
	if input.Analysis.StressLevel == "" {
		return SessionRecord{}, fmt.Errorf("%w: analysis result is required", ErrInvalidRecord)
	}
	// The level is derived from the score, never taken from the client.
	input.Analysis.StressLevel = analysis.LevelForScore(input.Analysis.StressScore)

	record := SessionRecord{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Type:      input.Type,
		InputKey:  input.InputKey,
		Analysis:  input.Analysis,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: s.Now(),
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		telemetry.Error("sessions.save_failed", map[string]any{
			"user_id": record.UserID,
			"error":   err.Error(),
		})
		return SessionRecord{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	telemetry.Info("sessions.saved", map[string]any{
		"session_id": record.ID,
		"user_id":    record.UserID,
		"type":       record.Type,
	})
	return record, nil
}

// List returns the user's sessions, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]SessionRecord, error) {
	records, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}

// Get returns a single session owned by the user.
func (s *Service) Get(ctx context.Context, sessionID, userID string) (SessionRecord, error) {
	record, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SessionRecord{}, ErrNotFound
		}
		return SessionRecord{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if record.UserID != userID {
		return SessionRecord{}, ErrNotFound
	}
	return record, nil
}

// Trend returns the user's stress scores over time, oldest first.
func (s *Service) Trend(ctx context.Context, userID string, limit int) ([]StressTrendPoint, error) {
	points, err := s.Repo.TrendByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return points, nil
}

// UpdateNotes replaces the notes on a session the user owns.
func (s *Service) UpdateNotes(ctx context.Context, sessionID, userID, notes string) error {
	err := s.Repo.UpdateNotes(ctx, sessionID, userID, strings.TrimSpace(notes))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
