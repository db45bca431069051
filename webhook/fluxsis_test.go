package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rifapix/settlement/model"
)

func TestFluxsisAdapter_Completed(t *testing.T) {
	a := NewFluxsisAdapter()

	body := []byte(`{
		"event": "payment.status_changed",
		"data": {
			"id": "flx-tx-01",
			"status": "COMPLETED",
			"amount": 42.9,
			"reference": "campaign_abc_tickets_31,32",
			"customer": {"name": "Ana", "email": "ana@example.com", "document": "11122233344"}
		}
	}`)

	ev, err := a.Parse(context.Background(), body)
	assert.Equal(t, nil, err)
	assert.Equal(t, "fluxsis", ev.Provider)
	assert.Equal(t, model.EventStatusSettled, ev.Status)
	assert.Equal(t, "flx-tx-01", ev.ProviderTransactionID)
	assert.Equal(t, "11122233344", ev.Payer.Document)
}

func TestFluxsisAdapter_Refunded(t *testing.T) {
	a := NewFluxsisAdapter()

	body := []byte(`{
		"event": "payment.status_changed",
		"data": {"id": "flx-tx-02", "status": "REFUNDED", "reference": "campaign_abc_tickets_8"}
	}`)

	ev, err := a.Parse(context.Background(), body)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.EventStatusReleased, ev.Status)
}

func TestFluxsisAdapter_NonPaymentEventAck(t *testing.T) {
	a := NewFluxsisAdapter()

	ev, err := a.Parse(context.Background(), []byte(`{"event": "webhook.test", "data": {}}`))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, ev.Ack)
}
