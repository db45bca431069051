package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/util"
)

// Payment ...
type Payment interface {
	UpsertFromEvent(
		ctx context.Context, ev model.PaymentEvent,
		campaignID string, status model.PaymentStatus, now time.Time,
	) error
	FindByReference(ctx context.Context, ref string) ([]model.Payment, error)
	FindByProviderTransaction(ctx context.Context, provider string, txID string) (model.Payment, error)
}

type paymentImpl struct {
}

// NewPayment ...
func NewPayment() Payment {
	return &paymentImpl{}
}

// UpsertFromEvent records the provider transaction, keyed by
// (provider, provider_transaction_id). Rows are never deleted.
func (p *paymentImpl) UpsertFromEvent(
	ctx context.Context, ev model.PaymentEvent,
	campaignID string, status model.PaymentStatus, now time.Time,
) error {
	query := `
INSERT INTO payments (
	id, campaign_id, provider, provider_transaction_id,
	reference, reference_hash, amount, currency, status,
	payer_name, payer_email, payer_document, created_at, updated_at
) VALUES (
	$1, $2, $3, $4,
	$5, $6, $7, $8, $9,
	NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $13
)
ON CONFLICT (provider, provider_transaction_id) DO UPDATE SET
	status = EXCLUDED.status,
	amount = COALESCE(EXCLUDED.amount, payments.amount),
	payer_name = COALESCE(EXCLUDED.payer_name, payments.payer_name),
	payer_email = COALESCE(EXCLUDED.payer_email, payments.payer_email),
	payer_document = COALESCE(EXCLUDED.payer_document, payments.payer_document),
	updated_at = EXCLUDED.updated_at
`
	_, err := GetTx(ctx).ExecContext(ctx, query,
		uuid.NewString(), campaignID, ev.Provider, ev.ProviderTransactionID,
		ev.Reference, int64(util.HashFunc(ev.Reference)), ev.Amount, ev.Currency, status,
		ev.Payer.Name, ev.Payer.Email, ev.Payer.Document, now,
	)
	return err
}

// FindByReference looks payments up through the murmur3 hash column so the
// long reference string itself stays out of the index
func (p *paymentImpl) FindByReference(ctx context.Context, ref string) ([]model.Payment, error) {
	query := `
SELECT id, campaign_id, provider, provider_transaction_id,
	reference, reference_hash, amount, currency, status,
	qr_code, payment_url, payer_name, payer_email, payer_document,
	created_at, updated_at
FROM payments
WHERE reference_hash = $1 AND reference = $2
ORDER BY created_at
`
	var result []model.Payment
	err := GetReadonly(ctx).SelectContext(ctx, &result, query,
		int64(util.HashFunc(ref)), ref)
	return result, err
}

// FindByProviderTransaction ...
func (p *paymentImpl) FindByProviderTransaction(
	ctx context.Context, provider string, txID string,
) (model.Payment, error) {
	query := `
SELECT id, campaign_id, provider, provider_transaction_id,
	reference, reference_hash, amount, currency, status,
	qr_code, payment_url, payer_name, payer_email, payer_document,
	created_at, updated_at
FROM payments
WHERE provider = $1 AND provider_transaction_id = $2
`
	var result model.Payment
	err := GetReadonly(ctx).GetContext(ctx, &result, query, provider, txID)
	return result, err
}
