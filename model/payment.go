package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one checkout attempt. Rows are never deleted, they serve as
// the audit trail of every provider transaction seen by the system.
type Payment struct {
	ID         string `db:"id"`
	CampaignID string `db:"campaign_id"`

	Provider              string `db:"provider"`
	ProviderTransactionID string `db:"provider_transaction_id"`

	Reference     string `db:"reference"`
	ReferenceHash uint32 `db:"reference_hash"`

	Amount   decimal.NullDecimal `db:"amount"`
	Currency string              `db:"currency"`

	Status PaymentStatus `db:"status"`

	QRCode     sql.NullString `db:"qr_code"`
	PaymentURL sql.NullString `db:"payment_url"`

	PayerName     sql.NullString `db:"payer_name"`
	PayerEmail    sql.NullString `db:"payer_email"`
	PayerDocument sql.NullString `db:"payer_document"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PaymentStatus ...
type PaymentStatus string

const (
	// PaymentStatusPending ...
	PaymentStatusPending PaymentStatus = "pending"

	// PaymentStatusSettled ...
	PaymentStatusSettled PaymentStatus = "settled"

	// PaymentStatusReleased ...
	PaymentStatusReleased PaymentStatus = "released"
)
