package sessions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use.
// It backs development setups that run without a database.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]SessionRecord
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]SessionRecord),
		byUser: make(map[string][]string),
	}
}

// Create stores the session record.
func (r *MemoryRepo) Create(ctx context.Context, record SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = record
	r.byUser[record.UserID] = append(r.byUser[record.UserID], record.ID)
	return nil
}

// GetByID returns a session by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sessionID string) (SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return SessionRecord{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[sessionID]
	if !ok {
		return SessionRecord{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns sessions for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	records := r.snapshotByUser(userID)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if offset >= len(records) {
		return []SessionRecord{}, nil
	}
	end := len(records)
	if offset+limit < end {
		end = offset + limit
	}
	return records[offset:end], nil
}

// TrendByUser returns stress points for the user's most recent
// sessions in chronological order.
func (r *MemoryRepo) TrendByUser(ctx context.Context, userID string, limit int) ([]StressTrendPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTrendLimit
	}

	records := r.snapshotByUser(userID)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	out := make([]StressTrendPoint, 0, len(records))
	for _, record := range records {
		out = append(out, StressTrendPoint{
			Timestamp:   record.CreatedAt,
			StressScore: record.Analysis.StressScore,
		})
	}
	return out, nil
}

// UpdateNotes replaces the notes on a session owned by the user.
func (r *MemoryRepo) UpdateNotes(ctx context.Context, sessionID, userID, notes string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.byID[sessionID]
	if !ok || record.UserID != userID {
		return ErrNotFound
	}
	record.Notes = notes
	r.byID[sessionID] = record
	return nil
}

func (r *MemoryRepo) snapshotByUser(userID string) []SessionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byUser[userID]
	out := make([]SessionRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
