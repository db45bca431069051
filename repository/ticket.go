package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/rifapix/settlement/model"
)

// Ticket ...
type Ticket interface {
	MarkPurchased(
		ctx context.Context, campaignID string, quotas []int64,
		payer model.PayerInfo, now time.Time,
	) (int64, error)
	ReleaseReserved(ctx context.Context, campaignID string, quotas []int64) (int64, error)

	MissingQuotas(ctx context.Context, campaignID string, limit int) ([]int64, error)
	InsertBatch(ctx context.Context, campaignID string, quotas []int64) (int64, error)

	CountByCampaign(ctx context.Context, campaignID string) (int64, error)
	ListByQuotas(ctx context.Context, campaignID string, quotas []int64) ([]model.Ticket, error)
}

type ticketImpl struct {
}

// NewTicket ...
func NewTicket() Ticket {
	return &ticketImpl{}
}

// MarkPurchased transitions reserved -> purchased for the given quota set.
// The status guard makes replayed deliveries a no-op: rows already
// purchased (or available) are excluded from the update.
func (t *ticketImpl) MarkPurchased(
	ctx context.Context, campaignID string, quotas []int64,
	payer model.PayerInfo, now time.Time,
) (int64, error) {
	query := `
UPDATE tickets
SET status = 'purchased',
	bought_at = $1,
	customer_name = COALESCE(NULLIF($2, ''), customer_name),
	customer_email = COALESCE(NULLIF($3, ''), customer_email)
WHERE campaign_id = $4 AND quota_number = ANY($5) AND status = 'reserved'
`
	result, err := GetTx(ctx).ExecContext(ctx, query,
		now, payer.Name, payer.Email, campaignID, pq.Array(quotas))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReleaseReserved transitions reserved -> available and clears ownership.
// Purchased tickets are never touched.
func (t *ticketImpl) ReleaseReserved(
	ctx context.Context, campaignID string, quotas []int64,
) (int64, error) {
	query := `
UPDATE tickets
SET status = 'available',
	user_id = NULL,
	customer_name = NULL,
	customer_email = NULL,
	customer_phone = NULL,
	reserved_at = NULL
WHERE campaign_id = $1 AND quota_number = ANY($2) AND status = 'reserved'
`
	result, err := GetTx(ctx).ExecContext(ctx, query, campaignID, pq.Array(quotas))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MissingQuotas returns quota numbers of the dense range 1..total_tickets
// that have no ticket row yet, in ascending order
func (t *ticketImpl) MissingQuotas(
	ctx context.Context, campaignID string, limit int,
) ([]int64, error) {
	query := `
SELECT gs.n
FROM campaigns c
CROSS JOIN generate_series(1, c.total_tickets) AS gs(n)
WHERE c.id = $1
	AND NOT EXISTS (
		SELECT 1 FROM tickets t WHERE t.campaign_id = c.id AND t.quota_number = gs.n
	)
ORDER BY gs.n
LIMIT $2
`
	var result []int64
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, campaignID, limit)
	return result, err
}

// InsertBatch bulk-inserts available tickets with a single multi-VALUES
// statement. ON CONFLICT DO NOTHING keeps re-runs after a partial failure
// safe even when another repair raced this one.
func (t *ticketImpl) InsertBatch(
	ctx context.Context, campaignID string, quotas []int64,
) (int64, error) {
	if len(quotas) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(quotas))
	args := make([]interface{}, 0, len(quotas)*2)
	for i, quota := range quotas {
		values = append(values, fmt.Sprintf("($%d, $%d, 'available')", i*2+1, i*2+2))
		args = append(args, campaignID, quota)
	}

	query := fmt.Sprintf(`
INSERT INTO tickets (campaign_id, quota_number, status)
VALUES %s
ON CONFLICT (campaign_id, quota_number) DO NOTHING
`, strings.Join(values, ", "))

	result, err := GetTx(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByCampaign ...
func (t *ticketImpl) CountByCampaign(ctx context.Context, campaignID string) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE campaign_id = $1`
	var count int64
	err := GetReadonly(ctx).GetContext(ctx, &count, query, campaignID)
	return count, err
}

// ListByQuotas ...
func (t *ticketImpl) ListByQuotas(
	ctx context.Context, campaignID string, quotas []int64,
) ([]model.Ticket, error) {
	query := `
SELECT id, campaign_id, quota_number, status,
	user_id, customer_name, customer_email, customer_phone,
	reserved_at, bought_at, created_at
FROM tickets
WHERE campaign_id = $1 AND quota_number = ANY($2)
ORDER BY quota_number
`
	var result []model.Ticket
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, campaignID, pq.Array(quotas))
	return result, err
}
