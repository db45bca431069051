package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/reference"
	"github.com/rifapix/settlement/repository"
)

const testCampaignID = "27c16ab0-6466-4be9-a1fc-3b5e06d8b4f7"
const testSecret = "super-secret-01"

func newSuitPayTestAdapter() *SuitPayAdapter {
	campaigns := func(_ context.Context, id string) (model.Campaign, error) {
		if id != testCampaignID {
			return model.Campaign{}, fmt.Errorf("%w: campaign %s", repository.ErrNotFound, id)
		}
		return model.Campaign{
			ID:          testCampaignID,
			OrganizerID: "org01",
			Status:      model.CampaignStatusActive,
		}, nil
	}
	configs := func(_ context.Context, organizerID string, provider string) (model.OrganizerIntegration, error) {
		return model.OrganizerIntegration{
			OrganizerID:   organizerID,
			Provider:      provider,
			WebhookSecret: sql.NullString{Valid: true, String: testSecret},
			Enabled:       true,
		}, nil
	}
	return NewSuitPayAdapter(campaigns, configs)
}

func newSuitPayBody(t *testing.T, status string, quotas string, mutate func(p *suitPayPayload)) []byte {
	t.Helper()

	payload := suitPayPayload{
		IDTransaction:     "sp-tx-01",
		TypeTransaction:   "PIX",
		StatusTransaction: status,
		Value:             json.Number("150.00"),
		PayerName:         "Maria Silva",
		PayerTaxID:        "12345678900",
		RequestNumber:     "campaign_" + testCampaignID + "_tickets_" + quotas,
	}
	payload.Hash = computeSuitPayHash(payload, testSecret)
	if mutate != nil {
		mutate(&payload)
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestSuitPayAdapter_Parse(t *testing.T) {
	a := newSuitPayTestAdapter()
	ctx := context.Background()

	ev, err := a.Parse(ctx, newSuitPayBody(t, "PAID_OUT", "1,2,3", nil))
	assert.Equal(t, nil, err)
	assert.Equal(t, "suitpay", ev.Provider)
	assert.Equal(t, model.EventStatusSettled, ev.Status)
	assert.Equal(t, "sp-tx-01", ev.ProviderTransactionID)
	assert.Equal(t, "campaign_"+testCampaignID+"_tickets_1,2,3", ev.Reference)
	assert.Equal(t, "Maria Silva", ev.Payer.Name)
	assert.Equal(t, "12345678900", ev.Payer.Document)
	assert.Equal(t, true, ev.Amount.Valid)
	assert.Equal(t, "150", ev.Amount.Decimal.String())
	assert.Equal(t, false, ev.Ack)
}

func TestSuitPayAdapter_HashIsCaseInsensitive(t *testing.T) {
	a := newSuitPayTestAdapter()

	body := newSuitPayBody(t, "PAID_OUT", "4", func(p *suitPayPayload) {
		p.Hash = strings.ToUpper(p.Hash)
	})

	ev, err := a.Parse(context.Background(), body)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.EventStatusSettled, ev.Status)
}

func TestSuitPayAdapter_HashMismatch(t *testing.T) {
	a := newSuitPayTestAdapter()

	body := newSuitPayBody(t, "PAID_OUT", "1,2", func(p *suitPayPayload) {
		p.Hash = "deadbeef" + p.Hash[8:]
	})

	_, err := a.Parse(context.Background(), body)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSuitPayAdapter_TamperedStatus(t *testing.T) {
	a := newSuitPayTestAdapter()

	// hash computed over CHARGEBACK, status flipped to PAID_OUT afterwards
	body := newSuitPayBody(t, "CHARGEBACK", "9", func(p *suitPayPayload) {
		p.StatusTransaction = "PAID_OUT"
	})

	_, err := a.Parse(context.Background(), body)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSuitPayAdapter_MissingSecret(t *testing.T) {
	campaigns := func(context.Context, string) (model.Campaign, error) {
		return model.Campaign{ID: testCampaignID, OrganizerID: "org01"}, nil
	}
	configs := func(context.Context, string, string) (model.OrganizerIntegration, error) {
		return model.OrganizerIntegration{Enabled: true}, nil
	}
	a := NewSuitPayAdapter(campaigns, configs)

	_, err := a.Parse(context.Background(), newSuitPayBody(t, "PAID_OUT", "1", nil))
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSuitPayAdapter_UnknownCampaign(t *testing.T) {
	a := newSuitPayTestAdapter()

	body := newSuitPayBody(t, "PAID_OUT", "1", func(p *suitPayPayload) {
		p.RequestNumber = "campaign_unknown-campaign_tickets_1"
	})

	_, err := a.Parse(context.Background(), body)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSuitPayAdapter_InvalidReference(t *testing.T) {
	a := newSuitPayTestAdapter()

	body := newSuitPayBody(t, "PAID_OUT", "1", func(p *suitPayPayload) {
		p.RequestNumber = "order_123"
	})

	_, err := a.Parse(context.Background(), body)
	assert.ErrorIs(t, err, reference.ErrInvalidReference)
}

func TestSuitPayAdapter_ChargebackReleases(t *testing.T) {
	a := newSuitPayTestAdapter()

	ev, err := a.Parse(context.Background(), newSuitPayBody(t, "CHARGEBACK", "5,6", nil))
	assert.Equal(t, nil, err)
	assert.Equal(t, model.EventStatusReleased, ev.Status)
}

func TestSuitPayAdapter_WaitingIsPending(t *testing.T) {
	a := newSuitPayTestAdapter()

	ev, err := a.Parse(context.Background(), newSuitPayBody(t, "WAITING_FOR_APPROVAL", "5", nil))
	assert.Equal(t, nil, err)
	assert.Equal(t, model.EventStatusPending, ev.Status)
}

func TestSuitPayAdapter_PingAck(t *testing.T) {
	a := newSuitPayTestAdapter()

	ev, err := a.Parse(context.Background(), []byte(`{"typeTransaction":"PING"}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ev.Ack)
}

func TestSuitPayAdapter_MalformedBody(t *testing.T) {
	a := newSuitPayTestAdapter()

	_, err := a.Parse(context.Background(), []byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
