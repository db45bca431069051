package model

import (
	"database/sql"
	"time"
)

// Campaign ...
type Campaign struct {
	ID           string         `db:"id"`
	OrganizerID  string         `db:"organizer_id"`
	Title        string         `db:"title"`
	TotalTickets int64          `db:"total_tickets"`
	Status       CampaignStatus `db:"status"`
	IsPaid       bool           `db:"is_paid"`
	ExpiresAt    sql.NullTime   `db:"expires_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CampaignStatus ...
type CampaignStatus string

const (
	// CampaignStatusDraft ...
	CampaignStatusDraft CampaignStatus = "draft"

	// CampaignStatusActive ...
	CampaignStatusActive CampaignStatus = "active"

	// CampaignStatusCompleted ...
	CampaignStatusCompleted CampaignStatus = "completed"

	// CampaignStatusCancelled ...
	CampaignStatusCancelled CampaignStatus = "cancelled"
)
