package model

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CleanupLog is an append-only audit record written by the settlement,
// backfill and cleanup engines. Pruned only by the cleanup engine itself.
type CleanupLog struct {
	ID         string         `db:"id"`
	Operation  string         `db:"operation"`
	CampaignID sql.NullString `db:"campaign_id"`
	Status     LogStatus      `db:"status"`
	Message    string         `db:"message"`
	Details    types.JSONText `db:"details"`

	CreatedAt time.Time `db:"created_at"`
}

// LogStatus ...
type LogStatus string

const (
	// LogStatusSuccess ...
	LogStatusSuccess LogStatus = "success"

	// LogStatusWarning ...
	LogStatusWarning LogStatus = "warning"

	// LogStatusError ...
	LogStatusError LogStatus = "error"
)

// Operation names used in cleanup_logs
const (
	// OperationSettlement ...
	OperationSettlement = "webhook_settlement"

	// OperationBackfill ...
	OperationBackfill = "ticket_backfill"

	// OperationExpireDrafts ...
	OperationExpireDrafts = "expire_draft_campaigns"

	// OperationPruneLogs ...
	OperationPruneLogs = "prune_old_logs"
)
