package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"wellness-backend/internal/analysis"
)

// PGRepo implements Repo using Postgres. Analysis results are stored
// as a jsonb document so the session row survives result schema
// additions without a migration.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new session record.
func (r *PGRepo) Create(ctx context.Context, record SessionRecord) error {
	const query = `
INSERT INTO sessions (id, user_id, type, input_key, analysis, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	payload, err := json.Marshal(record.Analysis)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Type,
		nullIfEmpty(record.InputKey),
		payload,
		nullIfEmpty(record.Notes),
		record.CreatedAt,
	)
	return err
}

// GetByID returns a session by ID.
func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (SessionRecord, error) {
	const query = `
SELECT id, user_id, type, input_key, analysis, notes, created_at
FROM sessions
WHERE id = $1
LIMIT 1`

	record, err := scanSession(r.DB.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, ErrNotFound
		}
		return SessionRecord{}, err
	}
	return record, nil
}

// ListByUser lists sessions for a user ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]SessionRecord, error) {
	limit, offset = clampPage(limit, offset)

	const query = `
SELECT id, user_id, type, input_key, analysis, notes, created_at
FROM sessions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SessionRecord{}
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// TrendByUser returns stress scores over time, oldest-first, for the
// user's most recent sessions.
func (r *PGRepo) TrendByUser(ctx context.Context, userID string, limit int) ([]StressTrendPoint, error) {
	if limit <= 0 {
		limit = defaultTrendLimit
	}

	// The inner query selects the newest N sessions; the outer one
	// flips them into chronological order for charting.
	const query = `
SELECT created_at, (analysis->>'stressScore')::float8
FROM (
	SELECT created_at, analysis
	FROM sessions
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
) recent
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StressTrendPoint{}
	for rows.Next() {
		var point StressTrendPoint
		var score sql.NullFloat64
		if err := rows.Scan(&point.Timestamp, &score); err != nil {
			return nil, err
		}
		if score.Valid {
			point.StressScore = score.Float64
		}
		out = append(out, point)
	}
	return out, rows.Err()
}

// UpdateNotes replaces the notes on a session owned by the user.
func (r *PGRepo) UpdateNotes(ctx context.Context, sessionID, userID, notes string) error {
	const query = `
UPDATE sessions
SET notes = $1
WHERE id = $2 AND user_id = $3`

	res, err := r.DB.ExecContext(ctx, query, notes, sessionID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionRecord, error) {
	var record SessionRecord
	var inputKey sql.NullString
	var notes sql.NullString
	var payload []byte
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Type,
		&inputKey,
		&payload,
		&notes,
		&record.CreatedAt,
	); err != nil {
		return SessionRecord{}, err
	}
	if inputKey.Valid {
		record.InputKey = inputKey.String
	}
	if notes.Valid {
		record.Notes = notes.String
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &record.Analysis); err != nil {
			record.Analysis = analysis.Result{}
		}
	}
	return record, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
