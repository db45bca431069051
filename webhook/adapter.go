package webhook

import (
	"context"
	"errors"
	"strings"

	"github.com/rifapix/settlement/model"
)

// ErrAuthentication marks a signature/hash mismatch. The delivery is
// rejected before any ticket state is touched.
var ErrAuthentication = errors.New("webhook: authentication failed")

// ErrMalformedPayload ...
var ErrMalformedPayload = errors.New("webhook: malformed payload")

// Adapter normalizes one provider's webhook payloads into canonical
// payment events. Verified reports whether the adapter authenticates
// deliveries; unverified adapters trust endpoint obscurity only and are
// logged as a security gap at startup.
type Adapter interface {
	Name() string
	Verified() bool
	Parse(ctx context.Context, body []byte) (model.PaymentEvent, error)
}

// Settler consumes canonical events, implemented by the settlement engine
type Settler interface {
	Process(ctx context.Context, ev model.PaymentEvent) (model.SettlementResult, error)
}

// CampaignSource resolves a campaign during adapter authentication
type CampaignSource func(ctx context.Context, id string) (model.Campaign, error)

// ConfigSource resolves an organizer's provider integration config
type ConfigSource func(ctx context.Context, organizerID string, provider string) (model.OrganizerIntegration, error)

// mapStatus translates a provider's status vocabulary into the canonical
// one. Unknown statuses stay PENDING: audit log only, no ticket mutation.
func mapStatus(providerStatus string) model.EventStatus {
	switch strings.ToLower(providerStatus) {
	case "paid", "approved", "completed", "paid_out", "succeeded":
		return model.EventStatusSettled
	case "failed", "cancelled", "canceled", "rejected", "expired", "chargeback", "refunded":
		return model.EventStatusReleased
	default:
		return model.EventStatusPending
	}
}
