package model

import (
	"database/sql"
	"time"
)

// Ticket is one numbered quota of a campaign. Quota numbers form a dense
// range 1..total_tickets, each appearing exactly once per campaign.
type Ticket struct {
	ID          int64        `db:"id"`
	CampaignID  string       `db:"campaign_id"`
	QuotaNumber int64        `db:"quota_number"`
	Status      TicketStatus `db:"status"`

	UserID        sql.NullString `db:"user_id"`
	CustomerName  sql.NullString `db:"customer_name"`
	CustomerEmail sql.NullString `db:"customer_email"`
	CustomerPhone sql.NullString `db:"customer_phone"`

	ReservedAt sql.NullTime `db:"reserved_at"`
	BoughtAt   sql.NullTime `db:"bought_at"`

	CreatedAt time.Time `db:"created_at"`
}

// TicketStatus ...
type TicketStatus string

const (
	// TicketStatusAvailable ...
	TicketStatusAvailable TicketStatus = "available"

	// TicketStatusReserved ...
	TicketStatusReserved TicketStatus = "reserved"

	// TicketStatusPurchased ...
	TicketStatusPurchased TicketStatus = "purchased"
)
