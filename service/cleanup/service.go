package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/repository"
)

const expireBatchLimit = 500

// Engine expires stale draft campaigns and prunes old audit logs
type Engine struct {
	provider repository.Provider

	campaignRepo repository.Campaign
	logRepo      repository.CleanupLog
}

// NewEngine ...
func NewEngine(
	provider repository.Provider,
	campaignRepo repository.Campaign,
	logRepo repository.CleanupLog,
) *Engine {
	return &Engine{
		provider: provider,

		campaignRepo: campaignRepo,
		logRepo:      logRepo,
	}
}

// DeletedCampaign ...
type DeletedCampaign struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ExpireResult ...
type ExpireResult struct {
	Deleted []DeletedCampaign
	Errors  int
}

// ExpireDraftCampaigns deletes draft campaigns whose expiry is before
// now. The per-row delete keeps its own status guard, so a draft that
// got activated between the listing and the delete survives.
func (e *Engine) ExpireDraftCampaigns(ctx context.Context, now time.Time) (ExpireResult, error) {
	roCtx := e.provider.Readonly(ctx)
	drafts, err := e.campaignRepo.ListExpiredDrafts(roCtx, now, expireBatchLimit)
	if err != nil {
		return ExpireResult{}, err
	}

	var result ExpireResult
	for _, draft := range drafts {
		var deleted bool
		err := e.provider.Transact(ctx, func(ctx context.Context) error {
			var err error
			deleted, err = e.campaignRepo.DeleteDraft(ctx, draft.ID)
			return err
		})
		if err != nil {
			result.Errors++
			otellib.Extract(ctx).Error("deleting expired draft failed",
				zap.String("campaign", draft.ID), zap.Error(err))
			continue
		}
		if deleted {
			result.Deleted = append(result.Deleted, DeletedCampaign{
				ID:    draft.ID,
				Title: draft.Title,
			})
		}
	}

	if len(result.Deleted) > 0 || result.Errors > 0 {
		e.logExpire(ctx, result)
	}
	return result, nil
}

// PruneOldLogs deletes audit entries older than the retention window
func (e *Engine) PruneOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	var removed int64
	err := e.provider.Transact(ctx, func(ctx context.Context) error {
		var err error
		removed, err = e.logRepo.DeleteOlderThan(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

type expireDetails struct {
	Deleted []DeletedCampaign `json:"deleted"`
	Errors  int               `json:"errors"`
}

func (e *Engine) logExpire(ctx context.Context, result ExpireResult) {
	status := model.LogStatusSuccess
	if result.Errors > 0 {
		status = model.LogStatusWarning
	}

	details, _ := json.Marshal(expireDetails{
		Deleted: result.Deleted,
		Errors:  result.Errors,
	})

	err := e.provider.Transact(ctx, func(ctx context.Context) error {
		return e.logRepo.Insert(ctx, model.CleanupLog{
			Operation: model.OperationExpireDrafts,
			Status:    status,
			Message: fmt.Sprintf("deleted %d expired draft campaigns, %d errors",
				len(result.Deleted), result.Errors),
			Details: details,
		})
	})
	if err != nil {
		otellib.Extract(ctx).Warn("writing expire audit entry failed", zap.Error(err))
	}
}
