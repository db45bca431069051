package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rifapix/settlement/model"
)

// CleanupLog ...
type CleanupLog interface {
	Insert(ctx context.Context, entry model.CleanupLog) error
	ListByOperation(ctx context.Context, operation string, limit int) ([]model.CleanupLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type cleanupLogImpl struct {
}

// NewCleanupLog ...
func NewCleanupLog() CleanupLog {
	return &cleanupLogImpl{}
}

// Insert appends one audit entry. The id is assigned here when empty.
func (c *cleanupLogImpl) Insert(ctx context.Context, entry model.CleanupLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if len(entry.Details) == 0 {
		entry.Details = []byte("{}")
	}

	query := `
INSERT INTO cleanup_logs (id, operation, campaign_id, status, message, details)
VALUES (:id, :operation, :campaign_id, :status, :message, :details)
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, entry)
	return err
}

// ListByOperation ...
func (c *cleanupLogImpl) ListByOperation(
	ctx context.Context, operation string, limit int,
) ([]model.CleanupLog, error) {
	query := `
SELECT id, operation, campaign_id, status, message, details, created_at
FROM cleanup_logs
WHERE operation = $1
ORDER BY created_at DESC
LIMIT $2
`
	var result []model.CleanupLog
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, operation, limit)
	return result, err
}

// DeleteOlderThan prunes audit entries past the retention threshold
func (c *cleanupLogImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM cleanup_logs WHERE created_at < $1`
	result, err := GetTx(ctx).ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
