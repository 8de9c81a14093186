package sessions

import "context"

// Repo defines persistence operations for session history.
type Repo interface {
	Create(ctx context.Context, record SessionRecord) error
	GetByID(ctx context.Context, sessionID string) (SessionRecord, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]SessionRecord, error)
	TrendByUser(ctx context.Context, userID string, limit int) ([]StressTrendPoint, error)
	UpdateNotes(ctx context.Context, sessionID, userID, notes string) error
}
