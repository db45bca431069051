package backfill

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/repository"
)

// DefaultBatchSize keeps one multi-VALUES insert well under the Postgres
// parameter limit
const DefaultBatchSize = 5000

// Engine repairs campaign ticket inventory: every campaign must own one
// ticket row per quota number in the dense range 1..total_tickets.
type Engine struct {
	provider repository.Provider

	campaignRepo repository.Campaign
	ticketRepo   repository.Ticket
	logRepo      repository.CleanupLog
}

// NewEngine ...
func NewEngine(
	provider repository.Provider,
	campaignRepo repository.Campaign,
	ticketRepo repository.Ticket,
	logRepo repository.CleanupLog,
) *Engine {
	return &Engine{
		provider: provider,

		campaignRepo: campaignRepo,
		ticketRepo:   ticketRepo,
		logRepo:      logRepo,
	}
}

// RepairResult ...
type RepairResult struct {
	CampaignID    string
	CampaignTitle string
	TotalNeeded   int64
	Existing      int64
	Created       int64
	FailedBatches int
}

// RepairAllResult ...
type RepairAllResult struct {
	Campaigns    []RepairResult
	TotalCreated int64
	Errors       int
}

// Statistics ...
func (e *Engine) Statistics(ctx context.Context) (model.BackfillStatistics, error) {
	ctx = e.provider.Readonly(ctx)
	return e.campaignRepo.BackfillStatistics(ctx)
}

// CampaignsNeedingRepair ...
func (e *Engine) CampaignsNeedingRepair(ctx context.Context) ([]model.CampaignBackfill, error) {
	ctx = e.provider.Readonly(ctx)
	return e.campaignRepo.ListNeedingBackfill(ctx)
}

// RepairCampaign creates every missing ticket row of one campaign, in
// independent batches: a failed batch is logged and counted, the rest of
// the batches still run. Re-running converges to zero missing rows.
func (e *Engine) RepairCampaign(ctx context.Context, campaignID string, batchSize int) (RepairResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	roCtx := e.provider.Readonly(ctx)

	campaign, err := e.campaignRepo.Get(roCtx, campaignID)
	if err != nil {
		return RepairResult{}, err
	}

	existing, err := e.ticketRepo.CountByCampaign(roCtx, campaignID)
	if err != nil {
		return RepairResult{}, err
	}

	missing, err := e.ticketRepo.MissingQuotas(roCtx, campaignID, int(campaign.TotalTickets))
	if err != nil {
		return RepairResult{}, err
	}

	result := RepairResult{
		CampaignID:    campaignID,
		CampaignTitle: campaign.Title,
		TotalNeeded:   campaign.TotalTickets,
		Existing:      existing,
	}

	for begin := 0; begin < len(missing); begin += batchSize {
		end := begin + batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[begin:end]

		err := e.provider.Transact(ctx, func(ctx context.Context) error {
			created, err := e.ticketRepo.InsertBatch(ctx, campaignID, batch)
			if err != nil {
				return err
			}
			result.Created += created
			return nil
		})
		if err != nil {
			result.FailedBatches++
			otellib.Extract(ctx).Error("backfill batch failed",
				zap.String("campaign", campaignID),
				zap.Int64("firstQuota", batch[0]),
				zap.Int("batchLen", len(batch)),
				zap.Error(err),
			)
		}
	}

	e.logRepair(ctx, result)
	return result, nil
}

// RepairAll repairs every campaign whose ticket count falls short.
// A failing campaign is counted and skipped, the rest still run.
func (e *Engine) RepairAll(ctx context.Context, batchSize int) (RepairAllResult, error) {
	campaigns, err := e.CampaignsNeedingRepair(ctx)
	if err != nil {
		return RepairAllResult{}, err
	}

	var result RepairAllResult
	for _, c := range campaigns {
		repaired, err := e.RepairCampaign(ctx, c.CampaignID, batchSize)
		if err != nil {
			result.Errors++
			otellib.Extract(ctx).Error("campaign repair failed",
				zap.String("campaign", c.CampaignID), zap.Error(err))
			continue
		}
		result.Campaigns = append(result.Campaigns, repaired)
		result.TotalCreated += repaired.Created
	}
	return result, nil
}

type repairDetails struct {
	TotalNeeded   int64 `json:"totalNeeded"`
	Existing      int64 `json:"existing"`
	Created       int64 `json:"created"`
	FailedBatches int   `json:"failedBatches"`
}

func (e *Engine) logRepair(ctx context.Context, result RepairResult) {
	if result.Created == 0 && result.FailedBatches == 0 {
		return
	}

	status := model.LogStatusSuccess
	if result.FailedBatches > 0 {
		status = model.LogStatusWarning
	}

	details, _ := json.Marshal(repairDetails{
		TotalNeeded:   result.TotalNeeded,
		Existing:      result.Existing,
		Created:       result.Created,
		FailedBatches: result.FailedBatches,
	})

	err := e.provider.Transact(ctx, func(ctx context.Context) error {
		return e.logRepo.Insert(ctx, model.CleanupLog{
			Operation:  model.OperationBackfill,
			CampaignID: sql.NullString{Valid: true, String: result.CampaignID},
			Status:     status,
			Message: fmt.Sprintf("created %d of %d missing tickets for %q",
				result.Created, result.TotalNeeded-result.Existing, result.CampaignTitle),
			Details: details,
		})
	})
	if err != nil {
		otellib.Extract(ctx).Warn("writing backfill audit entry failed", zap.Error(err))
	}
}
