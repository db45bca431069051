package webhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rifapix/settlement/model"
)

// Pay2mAdapter handles Pay2m transaction notifications. Unverified.
type Pay2mAdapter struct {
}

// NewPay2mAdapter ...
func NewPay2mAdapter() *Pay2mAdapter {
	return &Pay2mAdapter{}
}

// Name ...
func (a *Pay2mAdapter) Name() string { return "pay2m" }

// Verified ...
func (a *Pay2mAdapter) Verified() bool { return false }

type pay2mPayload struct {
	NotificationType string `json:"notification_type"`
	Transaction      struct {
		ID                string      `json:"id"`
		Status            string      `json:"status"`
		Amount            json.Number `json:"amount"`
		ExternalReference string      `json:"external_reference"`
		PayerName         string      `json:"payer_name"`
		PayerEmail        string      `json:"payer_email"`
	} `json:"transaction"`
}

// Parse ...
func (a *Pay2mAdapter) Parse(_ context.Context, body []byte) (model.PaymentEvent, error) {
	var payload pay2mPayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return model.PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.NotificationType != "transaction" {
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}

	ev := model.PaymentEvent{
		Provider:              a.Name(),
		Reference:             payload.Transaction.ExternalReference,
		Status:                mapStatus(payload.Transaction.Status),
		ProviderTransactionID: payload.Transaction.ID,
		Currency:              "BRL",
		Payer: model.PayerInfo{
			Name:  payload.Transaction.PayerName,
			Email: payload.Transaction.PayerEmail,
		},
	}
	if payload.Transaction.Amount != "" {
		amount, err := decimal.NewFromString(payload.Transaction.Amount.String())
		if err != nil {
			return model.PaymentEvent{}, fmt.Errorf(
				"%w: amount %q", ErrMalformedPayload, payload.Transaction.Amount)
		}
		ev.Amount = decimal.NewNullDecimal(amount)
	}
	return ev, nil
}
