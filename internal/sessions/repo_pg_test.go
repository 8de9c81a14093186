package sessions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"wellness-backend/internal/analysis"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	record := SessionRecord{
		ID:       "session-1",
		UserID:   "user-1",
		Type:     "text",
		InputKey: "user-1/clip.wav",
		Analysis: analysis.Result{
			StressScore: 7,
			StressLevel: "high",
		},
		Notes:     "rough day",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(
			record.ID,
			record.UserID,
			record.Type,
			record.InputKey,
			sqlmock.AnyArg(), // analysis jsonb
			record.Notes,
			record.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDRoundTripsAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	stored := analysis.Result{
		StressScore:    7,
		StressLevel:    "high",
		PrimaryEmotion: "anxious",
		TextEmotion:    "worried",
		FaceEmotion:    "unknown",
		VoiceEmotion:   "unknown",
		Tips:           []string{"Take a short walk"},
	}
	payload, _ := json.Marshal(stored)
	created := time.Now().UTC().Truncate(time.Microsecond)

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "input_key", "analysis", "notes", "created_at"}).
		AddRow("session-1", "user-1", "text", nil, payload, nil, created)
	mock.ExpectQuery("SELECT id, user_id, type, input_key, analysis, notes, created_at").
		WithArgs("session-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	record, err := repo.GetByID(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record.Analysis.StressLevel != "high" || record.Analysis.TextEmotion != "worried" {
		t.Errorf("analysis did not round-trip: %+v", record.Analysis)
	}
	if !record.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", record.CreatedAt, created)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, user_id, type, input_key, analysis, notes, created_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "input_key", "analysis", "notes", "created_at"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestPGRepoTrendByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	earlier := time.Now().UTC().Add(-time.Hour)
	later := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"created_at", "stress_score"}).
		AddRow(earlier, 3.0).
		AddRow(later, 8.0)
	mock.ExpectQuery("ORDER BY created_at ASC").
		WithArgs("user-1", defaultTrendLimit).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	points, err := repo.TrendByUser(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("TrendByUser: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if !points[0].Timestamp.Before(points[1].Timestamp) {
		t.Error("points not in ascending time order")
	}
	if points[1].StressScore != 8.0 {
		t.Errorf("StressScore = %v, want 8", points[1].StressScore)
	}
}

func TestPGRepoUpdateNotesNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE sessions").
		WithArgs("calmer now", "session-1", "other-user").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.UpdateNotes(context.Background(), "session-1", "other-user", "calmer now"); err != ErrNotFound {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
