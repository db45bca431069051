package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/integration"
)

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

type campaignTest struct {
	tc       *integration.TestCase
	provider Provider
	repo     Campaign
}

func newCampaignTest() *campaignTest {
	tc := integration.NewTestCase()
	return &campaignTest{
		tc:       tc,
		provider: NewProvider(tc.DB),
		repo:     NewCampaign(),
	}
}

func (c *campaignTest) insert(campaign model.Campaign) {
	err := c.provider.Transact(newContext(), func(ctx context.Context) error {
		return c.repo.Insert(ctx, campaign)
	})
	if err != nil {
		panic(err)
	}
}

func newCampaign(id string, total int64, status model.CampaignStatus) model.Campaign {
	return model.Campaign{
		ID:           id,
		OrganizerID:  "org-1",
		Title:        "Campaign " + id,
		TotalTickets: total,
		Status:       status,
	}
}

func TestCampaign_GetInsert(t *testing.T) {
	tc := newCampaignTest()
	tc.tc.Truncate("campaigns")

	ctx := tc.provider.Readonly(newContext())

	_, err := tc.repo.Get(ctx, "c1")
	assert.Equal(t, true, errors.Is(err, ErrNotFound))

	tc.insert(newCampaign("c1", 100, model.CampaignStatusActive))

	campaign, err := tc.repo.Get(ctx, "c1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "c1", campaign.ID)
	assert.Equal(t, "org-1", campaign.OrganizerID)
	assert.Equal(t, int64(100), campaign.TotalTickets)
	assert.Equal(t, model.CampaignStatusActive, campaign.Status)
	assert.Equal(t, false, campaign.ExpiresAt.Valid)
	assert.Equal(t, false, campaign.CreatedAt.IsZero())
}

func TestCampaign_ExpiredDrafts(t *testing.T) {
	tc := newCampaignTest()
	tc.tc.Truncate("campaigns")

	now := newTime("2024-03-10T12:00:00Z")

	expired := newCampaign("d1", 10, model.CampaignStatusDraft)
	expired.ExpiresAt = sql.NullTime{Valid: true, Time: newTime("2024-03-01T00:00:00Z")}
	tc.insert(expired)

	fresh := newCampaign("d2", 10, model.CampaignStatusDraft)
	fresh.ExpiresAt = sql.NullTime{Valid: true, Time: newTime("2024-04-01T00:00:00Z")}
	tc.insert(fresh)

	never := newCampaign("d3", 10, model.CampaignStatusDraft)
	tc.insert(never)

	activeExpired := newCampaign("a1", 10, model.CampaignStatusActive)
	activeExpired.ExpiresAt = sql.NullTime{Valid: true, Time: newTime("2024-03-01T00:00:00Z")}
	tc.insert(activeExpired)

	ctx := tc.provider.Readonly(newContext())

	drafts, err := tc.repo.ListExpiredDrafts(ctx, now, 100)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(drafts))
	assert.Equal(t, "d1", drafts[0].ID)
}

func TestCampaign_DeleteDraftGuard(t *testing.T) {
	tc := newCampaignTest()
	tc.tc.Truncate("campaigns")

	tc.insert(newCampaign("d1", 10, model.CampaignStatusDraft))
	tc.insert(newCampaign("a1", 10, model.CampaignStatusActive))

	var deleted bool
	err := tc.provider.Transact(newContext(), func(ctx context.Context) error {
		var err error
		deleted, err = tc.repo.DeleteDraft(ctx, "d1")
		return err
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, true, deleted)

	// active campaigns survive the guarded delete
	err = tc.provider.Transact(newContext(), func(ctx context.Context) error {
		var err error
		deleted, err = tc.repo.DeleteDraft(ctx, "a1")
		return err
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, false, deleted)

	ctx := tc.provider.Readonly(newContext())
	_, err = tc.repo.Get(ctx, "d1")
	assert.Equal(t, true, errors.Is(err, ErrNotFound))

	_, err = tc.repo.Get(ctx, "a1")
	assert.Equal(t, nil, err)
}

func TestCampaign_BackfillViews(t *testing.T) {
	tc := newCampaignTest()
	tc.tc.Truncate("campaigns", "tickets")

	ticketRepo := NewTicket()

	tc.insert(newCampaign("full", 3, model.CampaignStatusActive))
	tc.insert(newCampaign("half", 4, model.CampaignStatusActive))
	tc.insert(newCampaign("empty", 10, model.CampaignStatusDraft))

	err := tc.provider.Transact(newContext(), func(ctx context.Context) error {
		_, err := ticketRepo.InsertBatch(ctx, "full", []int64{1, 2, 3})
		if err != nil {
			return err
		}
		_, err = ticketRepo.InsertBatch(ctx, "half", []int64{1, 2})
		return err
	})
	assert.Equal(t, nil, err)

	ctx := tc.provider.Readonly(newContext())

	stats, err := tc.repo.BackfillStatistics(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.BackfillStatistics{
		TotalCampaigns:           3,
		CampaignsNeedingBackfill: 2,
		TotalMissingTickets:      12,
		LargestMissingCount:      10,
	}, stats)

	needing, err := tc.repo.ListNeedingBackfill(ctx)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(needing))
	assert.Equal(t, "empty", needing[0].CampaignID)
	assert.Equal(t, int64(10), needing[0].MissingCount)
	assert.Equal(t, "half", needing[1].CampaignID)
	assert.Equal(t, int64(2), needing[1].MissingCount)
}
