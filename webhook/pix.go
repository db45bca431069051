package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rifapix/settlement/model"
)

// PixAdapter handles the generic PIX gateway callbacks. Unverified.
type PixAdapter struct {
}

// NewPixAdapter ...
func NewPixAdapter() *PixAdapter {
	return &PixAdapter{}
}

// Name ...
func (a *PixAdapter) Name() string { return "pix" }

// Verified ...
func (a *PixAdapter) Verified() bool { return false }

type pixPayload struct {
	Event         string      `json:"event"`
	TransactionID string      `json:"transactionId"`
	Status        string      `json:"status"`
	Amount        json.Number `json:"amount"`
	Reference     string      `json:"reference"`
	Payer         struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Document string `json:"document"`
	} `json:"payer"`
}

// Parse ...
func (a *PixAdapter) Parse(_ context.Context, body []byte) (model.PaymentEvent, error) {
	var payload pixPayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return model.PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.Event != "" && !strings.HasPrefix(payload.Event, "payment") {
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}
	if payload.Status == "" && payload.TransactionID == "" {
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}

	ev := model.PaymentEvent{
		Provider:              a.Name(),
		Reference:             payload.Reference,
		Status:                mapStatus(payload.Status),
		ProviderTransactionID: payload.TransactionID,
		Currency:              "BRL",
		Payer: model.PayerInfo{
			Name:     payload.Payer.Name,
			Email:    payload.Payer.Email,
			Document: payload.Payer.Document,
		},
	}
	if payload.Amount != "" {
		amount, err := decimal.NewFromString(payload.Amount.String())
		if err != nil {
			return model.PaymentEvent{}, fmt.Errorf("%w: amount %q", ErrMalformedPayload, payload.Amount)
		}
		ev.Amount = decimal.NewNullDecimal(amount)
	}
	return ev, nil
}
