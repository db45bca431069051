package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rifapix/settlement/model"
)

type providerFake struct {
	transactCalls int
}

func (p *providerFake) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	p.transactCalls++
	return fn(ctx)
}

func (p *providerFake) Readonly(ctx context.Context) context.Context {
	return ctx
}

type campaignFake struct {
	expiredDrafts []model.Campaign
	listLimit     int

	deleteResults map[string]bool
	deleteErrs    map[string]error
	deleted       []string
}

func (c *campaignFake) Get(_ context.Context, _ string) (model.Campaign, error) {
	return model.Campaign{}, nil
}

func (c *campaignFake) Insert(_ context.Context, _ model.Campaign) error { return nil }

func (c *campaignFake) ListExpiredDrafts(_ context.Context, _ time.Time, limit int) ([]model.Campaign, error) {
	c.listLimit = limit
	return c.expiredDrafts, nil
}

func (c *campaignFake) DeleteDraft(_ context.Context, id string) (bool, error) {
	if err := c.deleteErrs[id]; err != nil {
		return false, err
	}
	deleted := c.deleteResults[id]
	if deleted {
		c.deleted = append(c.deleted, id)
	}
	return deleted, nil
}

func (c *campaignFake) BackfillStatistics(_ context.Context) (model.BackfillStatistics, error) {
	return model.BackfillStatistics{}, nil
}

func (c *campaignFake) ListNeedingBackfill(_ context.Context) ([]model.CampaignBackfill, error) {
	return nil, nil
}

type logFake struct {
	entries []model.CleanupLog

	deleteCutoff  time.Time
	deleteRemoved int64
	deleteErr     error
}

func (l *logFake) Insert(_ context.Context, entry model.CleanupLog) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *logFake) ListByOperation(_ context.Context, _ string, _ int) ([]model.CleanupLog, error) {
	return nil, nil
}

func (l *logFake) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	l.deleteCutoff = cutoff
	return l.deleteRemoved, l.deleteErr
}

type engineTest struct {
	provider  *providerFake
	campaigns *campaignFake
	logs      *logFake

	engine *Engine
}

func newEngineTest() *engineTest {
	e := &engineTest{
		provider: &providerFake{},
		campaigns: &campaignFake{
			deleteResults: map[string]bool{},
			deleteErrs:    map[string]error{},
		},
		logs: &logFake{},
	}
	e.engine = NewEngine(e.provider, e.campaigns, e.logs)
	return e
}

func draft(id string, title string) model.Campaign {
	return model.Campaign{
		ID:     id,
		Title:  title,
		Status: model.CampaignStatusDraft,
	}
}

func TestEngine_ExpireDraftCampaigns(t *testing.T) {
	e := newEngineTest()
	e.campaigns.expiredDrafts = []model.Campaign{
		draft("d1", "Old Draft"),
		draft("d2", "Abandoned"),
	}
	e.campaigns.deleteResults["d1"] = true
	e.campaigns.deleteResults["d2"] = true

	result, err := e.engine.ExpireDraftCampaigns(context.Background(), time.Now())

	assert.Equal(t, nil, err)
	assert.Equal(t, []DeletedCampaign{
		{ID: "d1", Title: "Old Draft"},
		{ID: "d2", Title: "Abandoned"},
	}, result.Deleted)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, expireBatchLimit, e.campaigns.listLimit)

	// one tx per draft plus one for the audit entry
	assert.Equal(t, 3, e.provider.transactCalls)
	assert.Equal(t, 1, len(e.logs.entries))
	entry := e.logs.entries[0]
	assert.Equal(t, model.OperationExpireDrafts, entry.Operation)
	assert.Equal(t, model.LogStatusSuccess, entry.Status)
	assert.Equal(t, "deleted 2 expired draft campaigns, 0 errors", entry.Message)
}

func TestEngine_ExpireSkipsActivatedDraft(t *testing.T) {
	e := newEngineTest()
	e.campaigns.expiredDrafts = []model.Campaign{
		draft("d1", "Old Draft"),
		draft("d2", "Became Active"),
	}
	e.campaigns.deleteResults["d1"] = true
	// d2: the guarded delete matched no row

	result, err := e.engine.ExpireDraftCampaigns(context.Background(), time.Now())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(result.Deleted))
	assert.Equal(t, "d1", result.Deleted[0].ID)
	assert.Equal(t, 0, result.Errors)
}

func TestEngine_ExpireCountsRowErrors(t *testing.T) {
	e := newEngineTest()
	e.campaigns.expiredDrafts = []model.Campaign{
		draft("d1", "Old Draft"),
		draft("d2", "Broken"),
		draft("d3", "Another"),
	}
	e.campaigns.deleteResults["d1"] = true
	e.campaigns.deleteResults["d3"] = true
	e.campaigns.deleteErrs["d2"] = errors.New("deadlock detected")

	result, err := e.engine.ExpireDraftCampaigns(context.Background(), time.Now())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(result.Deleted))
	assert.Equal(t, 1, result.Errors)

	assert.Equal(t, 1, len(e.logs.entries))
	assert.Equal(t, model.LogStatusWarning, e.logs.entries[0].Status)
}

func TestEngine_ExpireNothingToDo(t *testing.T) {
	e := newEngineTest()

	result, err := e.engine.ExpireDraftCampaigns(context.Background(), time.Now())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(result.Deleted))
	assert.Equal(t, 0, e.provider.transactCalls)
	assert.Equal(t, 0, len(e.logs.entries))
}

func TestEngine_PruneOldLogs(t *testing.T) {
	e := newEngineTest()
	e.logs.deleteRemoved = 37

	before := time.Now().Add(-90 * 24 * time.Hour)
	removed, err := e.engine.PruneOldLogs(context.Background(), 90*24*time.Hour)
	after := time.Now().Add(-90 * 24 * time.Hour)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(37), removed)
	assert.Equal(t, false, e.logs.deleteCutoff.Before(before))
	assert.Equal(t, false, e.logs.deleteCutoff.After(after))
}

func TestEngine_PruneOldLogsError(t *testing.T) {
	e := newEngineTest()
	e.logs.deleteErr = errors.New("connection refused")

	removed, err := e.engine.PruneOldLogs(context.Background(), time.Hour)

	assert.Equal(t, errors.New("connection refused"), err)
	assert.Equal(t, int64(0), removed)
}
