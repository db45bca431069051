package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rifapix/settlement/model"
)

// Campaign ...
type Campaign interface {
	Get(ctx context.Context, id string) (model.Campaign, error)
	Insert(ctx context.Context, campaign model.Campaign) error
	ListExpiredDrafts(ctx context.Context, now time.Time, limit int) ([]model.Campaign, error)
	DeleteDraft(ctx context.Context, id string) (bool, error)
	BackfillStatistics(ctx context.Context) (model.BackfillStatistics, error)
	ListNeedingBackfill(ctx context.Context) ([]model.CampaignBackfill, error)
}

type campaignImpl struct {
}

// NewCampaign ...
func NewCampaign() Campaign {
	return &campaignImpl{}
}

// Get ...
func (c *campaignImpl) Get(ctx context.Context, id string) (model.Campaign, error) {
	query := `
SELECT id, organizer_id, title, total_tickets, status, is_paid, expires_at, created_at, updated_at
FROM campaigns
WHERE id = $1
`
	var result model.Campaign
	err := GetReadonly(ctx).GetContext(ctx, &result, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Campaign{}, fmt.Errorf("%w: campaign %s", ErrNotFound, id)
	}
	return result, err
}

// Insert ...
func (c *campaignImpl) Insert(ctx context.Context, campaign model.Campaign) error {
	query := `
INSERT INTO campaigns (
	id, organizer_id, title, total_tickets, status, is_paid, expires_at
) VALUES (
	:id, :organizer_id, :title, :total_tickets, :status, :is_paid, :expires_at
)
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, campaign)
	return err
}

// ListExpiredDrafts ...
func (c *campaignImpl) ListExpiredDrafts(
	ctx context.Context, now time.Time, limit int,
) ([]model.Campaign, error) {
	query := `
SELECT id, organizer_id, title, total_tickets, status, is_paid, expires_at, created_at, updated_at
FROM campaigns
WHERE status = 'draft' AND expires_at IS NOT NULL AND expires_at < $1
ORDER BY expires_at
LIMIT $2
`
	var result []model.Campaign
	err := GetReadonly(ctx).SelectContext(ctx, &result, query, now, limit)
	return result, err
}

// DeleteDraft deletes a campaign only while it is still a draft. Ticket
// rows go with it via ON DELETE CASCADE.
func (c *campaignImpl) DeleteDraft(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM campaigns WHERE id = $1 AND status = 'draft'`
	result, err := GetTx(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// BackfillStatistics ...
func (c *campaignImpl) BackfillStatistics(ctx context.Context) (model.BackfillStatistics, error) {
	query := `
SELECT
	COUNT(*) AS total_campaigns,
	COUNT(*) FILTER (WHERE c.total_tickets > COALESCE(t.cnt, 0)) AS campaigns_needing_backfill,
	COALESCE(SUM(GREATEST(c.total_tickets - COALESCE(t.cnt, 0), 0)), 0) AS total_missing_tickets,
	COALESCE(MAX(GREATEST(c.total_tickets - COALESCE(t.cnt, 0), 0)), 0) AS largest_missing_count
FROM campaigns c
LEFT JOIN (
	SELECT campaign_id, COUNT(*) AS cnt FROM tickets GROUP BY campaign_id
) t ON t.campaign_id = c.id
`
	var result model.BackfillStatistics
	err := GetReadonly(ctx).GetContext(ctx, &result, query)
	return result, err
}

// ListNeedingBackfill ...
func (c *campaignImpl) ListNeedingBackfill(ctx context.Context) ([]model.CampaignBackfill, error) {
	query := `
SELECT c.id, c.title, c.status, c.total_tickets,
	c.total_tickets - COALESCE(t.cnt, 0) AS missing_count
FROM campaigns c
LEFT JOIN (
	SELECT campaign_id, COUNT(*) AS cnt FROM tickets GROUP BY campaign_id
) t ON t.campaign_id = c.id
WHERE c.total_tickets > COALESCE(t.cnt, 0)
ORDER BY missing_count DESC
`
	var result []model.CampaignBackfill
	err := GetReadonly(ctx).SelectContext(ctx, &result, query)
	return result, err
}
