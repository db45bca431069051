package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rifapix/settlement/model"
)

// StripeAdapter handles Stripe checkout-session events. No signature
// verification: the legacy integration relied on endpoint obscurity,
// which Verified() exposes so the gap is visible.
type StripeAdapter struct {
}

// NewStripeAdapter ...
func NewStripeAdapter() *StripeAdapter {
	return &StripeAdapter{}
}

// Name ...
func (a *StripeAdapter) Name() string { return "stripe" }

// Verified ...
func (a *StripeAdapter) Verified() bool { return false }

type stripePayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			AmountTotal       int64  `json:"amount_total"`
			Currency          string `json:"currency"`
			PaymentStatus     string `json:"payment_status"`
			ClientReferenceID string `json:"client_reference_id"`
			Metadata          struct {
				Reference string `json:"reference"`
			} `json:"metadata"`
			CustomerDetails struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"customer_details"`
		} `json:"object"`
	} `json:"data"`
}

// Parse ...
func (a *StripeAdapter) Parse(_ context.Context, body []byte) (model.PaymentEvent, error) {
	var payload stripePayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return model.PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var status model.EventStatus
	switch payload.Type {
	case "checkout.session.completed":
		status = mapStatus(payload.Data.Object.PaymentStatus)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		status = model.EventStatusReleased
	default:
		// customer.created, ping, etc: acknowledge and ignore
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}

	ref := payload.Data.Object.Metadata.Reference
	if ref == "" {
		ref = payload.Data.Object.ClientReferenceID
	}

	ev := model.PaymentEvent{
		Provider:              a.Name(),
		Reference:             ref,
		Status:                status,
		ProviderTransactionID: payload.Data.Object.ID,
		Currency:              payload.Data.Object.Currency,
		Payer: model.PayerInfo{
			Name:  payload.Data.Object.CustomerDetails.Name,
			Email: payload.Data.Object.CustomerDetails.Email,
		},
	}
	if payload.Data.Object.AmountTotal > 0 {
		// stripe amounts are integer cents
		ev.Amount = decimal.NewNullDecimal(decimal.New(payload.Data.Object.AmountTotal, -2))
	}
	return ev, nil
}
