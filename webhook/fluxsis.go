package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rifapix/settlement/model"
)

// FluxsisAdapter handles Fluxsis payment events. Unverified.
type FluxsisAdapter struct {
}

// NewFluxsisAdapter ...
func NewFluxsisAdapter() *FluxsisAdapter {
	return &FluxsisAdapter{}
}

// Name ...
func (a *FluxsisAdapter) Name() string { return "fluxsis" }

// Verified ...
func (a *FluxsisAdapter) Verified() bool { return false }

type fluxsisPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        string      `json:"id"`
		Status    string      `json:"status"`
		Amount    json.Number `json:"amount"`
		Reference string      `json:"reference"`
		Customer  struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Document string `json:"document"`
		} `json:"customer"`
	} `json:"data"`
}

// Parse ...
func (a *FluxsisAdapter) Parse(_ context.Context, body []byte) (model.PaymentEvent, error) {
	var payload fluxsisPayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return model.PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if !strings.HasPrefix(payload.Event, "payment.") {
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}

	ev := model.PaymentEvent{
		Provider:              a.Name(),
		Reference:             payload.Data.Reference,
		Status:                mapStatus(payload.Data.Status),
		ProviderTransactionID: payload.Data.ID,
		Currency:              "BRL",
		Payer: model.PayerInfo{
			Name:     payload.Data.Customer.Name,
			Email:    payload.Data.Customer.Email,
			Document: payload.Data.Customer.Document,
		},
	}
	if payload.Data.Amount != "" {
		amount, err := decimal.NewFromString(payload.Data.Amount.String())
		if err != nil {
			return model.PaymentEvent{}, fmt.Errorf("%w: amount %q", ErrMalformedPayload, payload.Data.Amount)
		}
		ev.Amount = decimal.NewNullDecimal(amount)
	}
	return ev, nil
}
