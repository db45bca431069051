package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/reference"
)

// SuitPayAdapter is the only adapter with a real integrity check: the
// payload carries a SHA-256 digest over its fields plus the organizer's
// shared secret. The secret is per organizer, resolved through the
// campaign encoded in requestNumber.
type SuitPayAdapter struct {
	campaigns CampaignSource
	configs   ConfigSource
}

// NewSuitPayAdapter ...
func NewSuitPayAdapter(campaigns CampaignSource, configs ConfigSource) *SuitPayAdapter {
	return &SuitPayAdapter{
		campaigns: campaigns,
		configs:   configs,
	}
}

// Name ...
func (a *SuitPayAdapter) Name() string { return "suitpay" }

// Verified ...
func (a *SuitPayAdapter) Verified() bool { return true }

type suitPayPayload struct {
	IDTransaction     string      `json:"idTransaction"`
	TypeTransaction   string      `json:"typeTransaction"`
	StatusTransaction string      `json:"statusTransaction"`
	Value             json.Number `json:"value"`
	PayerName         string      `json:"payerName"`
	PayerTaxID        string      `json:"payerTaxId"`
	RequestNumber     string      `json:"requestNumber"`
	Hash              string      `json:"hash"`
}

// Parse ...
func (a *SuitPayAdapter) Parse(ctx context.Context, body []byte) (model.PaymentEvent, error) {
	var payload suitPayPayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return model.PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	// status-less deliveries are pings, acknowledge without side effects
	if payload.StatusTransaction == "" {
		return model.PaymentEvent{Provider: a.Name(), Ack: true}, nil
	}

	campaignID, _, err := reference.Decode(payload.RequestNumber)
	if err != nil {
		return model.PaymentEvent{}, err
	}

	campaign, err := a.campaigns(ctx, campaignID)
	if err != nil {
		return model.PaymentEvent{}, err
	}

	intg, err := a.configs(ctx, campaign.OrganizerID, a.Name())
	if err != nil {
		return model.PaymentEvent{}, err
	}
	if !intg.WebhookSecret.Valid || intg.WebhookSecret.String == "" {
		return model.PaymentEvent{}, fmt.Errorf(
			"%w: organizer %s has no suitpay webhook secret", ErrAuthentication, campaign.OrganizerID)
	}

	expected := computeSuitPayHash(payload, intg.WebhookSecret.String)
	if !strings.EqualFold(expected, payload.Hash) {
		return model.PaymentEvent{}, fmt.Errorf("%w: suitpay hash mismatch", ErrAuthentication)
	}

	ev := model.PaymentEvent{
		Provider:              a.Name(),
		Reference:             payload.RequestNumber,
		Status:                mapStatus(payload.StatusTransaction),
		ProviderTransactionID: payload.IDTransaction,
		Currency:              "BRL",
		Payer: model.PayerInfo{
			Name:     payload.PayerName,
			Document: payload.PayerTaxID,
		},
	}
	if payload.Value != "" {
		amount, err := decimal.NewFromString(payload.Value.String())
		if err != nil {
			return model.PaymentEvent{}, fmt.Errorf("%w: value %q", ErrMalformedPayload, payload.Value)
		}
		ev.Amount = decimal.NewNullDecimal(amount)
	}
	return ev, nil
}

// computeSuitPayHash digests the fixed field order
// idTransaction|typeTransaction|statusTransaction|requestNumber plus the
// organizer secret, hex encoded
func computeSuitPayHash(payload suitPayPayload, secret string) string {
	sum := sha256.Sum256([]byte(
		payload.IDTransaction +
			payload.TypeTransaction +
			payload.StatusTransaction +
			payload.RequestNumber +
			secret,
	))
	return hex.EncodeToString(sum[:])
}
