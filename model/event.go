package model

import (
	"github.com/shopspring/decimal"
)

// PaymentEvent is the canonical form every provider webhook is normalized
// into before it reaches the settlement engine.
type PaymentEvent struct {
	Provider              string
	Reference             string
	Status                EventStatus
	ProviderTransactionID string

	Amount   decimal.NullDecimal
	Currency string

	Payer PayerInfo

	// Ack marks a non-payment event (ping, unrelated type): acknowledged
	// with success and never forwarded to the settlement engine.
	Ack bool
}

// PayerInfo ...
type PayerInfo struct {
	Name     string
	Email    string
	Document string
}

// EventStatus is the canonical payment status vocabulary
type EventStatus string

const (
	// EventStatusSettled confirms the reservation: reserved -> purchased
	EventStatusSettled EventStatus = "SETTLED"

	// EventStatusReleased releases the reservation: reserved -> available
	EventStatusReleased EventStatus = "RELEASED"

	// EventStatusPending mutates nothing, audit log only
	EventStatusPending EventStatus = "PENDING"
)

// SettlementOutcome ...
type SettlementOutcome string

const (
	// OutcomePurchased ...
	OutcomePurchased SettlementOutcome = "purchased"

	// OutcomeReleased ...
	OutcomeReleased SettlementOutcome = "released"

	// OutcomePending ...
	OutcomePending SettlementOutcome = "pending"

	// OutcomeNoOp means the guarded update matched no rows, e.g. a
	// replayed delivery for tickets already transitioned.
	OutcomeNoOp SettlementOutcome = "noop"
)

// SettlementResult ...
type SettlementResult struct {
	CampaignID string
	Quotas     []int64
	Updated    int64
	Outcome    SettlementOutcome
}
