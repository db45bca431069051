package model

import (
	"database/sql"
	"time"
)

// OrganizerIntegration holds one organizer's credentials for one payment
// provider. Secrets come from here at request time, never from constants.
type OrganizerIntegration struct {
	OrganizerID string `db:"organizer_id"`
	Provider    string `db:"provider"`

	APIKey        sql.NullString `db:"api_key"`
	ClientSecret  sql.NullString `db:"client_secret"`
	WebhookSecret sql.NullString `db:"webhook_secret"`

	Enabled bool `db:"enabled"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
