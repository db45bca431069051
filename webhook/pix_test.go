package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rifapix/settlement/model"
)

func TestPixAdapter_Paid(t *testing.T) {
	a := NewPixAdapter()

	body := []byte(`{
		"event": "payment.status",
		"transactionId": "pix-tx-01",
		"status": "approved",
		"amount": 55.5,
		"reference": "campaign_abc_tickets_10,11",
		"payer": {"name": "Joao", "document": "98765432100"}
	}`)

	ev, err := a.Parse(context.Background(), body)
	assert.Equal(t, nil, err)
	assert.Equal(t, "pix", ev.Provider)
	assert.Equal(t, model.EventStatusSettled, ev.Status)
	assert.Equal(t, "pix-tx-01", ev.ProviderTransactionID)
	assert.Equal(t, "Joao", ev.Payer.Name)
	assert.Equal(t, "55.5", ev.Amount.Decimal.String())
}

func TestPixAdapter_Expired(t *testing.T) {
	a := NewPixAdapter()

	body := []byte(`{"transactionId": "pix-tx-02", "status": "expired", "reference": "campaign_abc_tickets_3"}`)

	ev, err := a.Parse(context.Background(), body)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.EventStatusReleased, ev.Status)
}

func TestPixAdapter_UnrelatedEventAck(t *testing.T) {
	a := NewPixAdapter()

	ev, err := a.Parse(context.Background(), []byte(`{"event": "account.verified"}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ev.Ack)
}

func TestPixAdapter_EmptyPingAck(t *testing.T) {
	a := NewPixAdapter()

	ev, err := a.Parse(context.Background(), []byte(`{}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ev.Ack)
}
