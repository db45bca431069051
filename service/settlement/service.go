package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/otellib"
	"github.com/rifapix/settlement/pkg/reference"
	"github.com/rifapix/settlement/repository"
)

// Engine applies canonical payment events to ticket state.
//
// Concurrency control is the status guard on the ticket UPDATE: only the
// delivery that still finds the rows in 'reserved' performs the
// transition, so replayed and racing deliveries degrade to no-ops.
type Engine struct {
	provider repository.Provider

	ticketRepo  repository.Ticket
	paymentRepo repository.Payment
	logRepo     repository.CleanupLog

	nowFunc func() time.Time
}

// NewEngine ...
func NewEngine(
	provider repository.Provider,
	ticketRepo repository.Ticket,
	paymentRepo repository.Payment,
	logRepo repository.CleanupLog,
) *Engine {
	return &Engine{
		provider: provider,

		ticketRepo:  ticketRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,

		nowFunc: time.Now,
	}
}

// Process transitions the referenced tickets. The status entry, the
// payment upsert and the audit entry commit in one transaction; a store
// failure rolls all of it back and the provider is expected to redeliver.
func (e *Engine) Process(ctx context.Context, ev model.PaymentEvent) (model.SettlementResult, error) {
	campaignID, quotas, err := reference.Decode(ev.Reference)
	if err != nil {
		return model.SettlementResult{}, err
	}

	now := e.nowFunc()
	result := model.SettlementResult{
		CampaignID: campaignID,
		Quotas:     quotas,
	}

	err = e.provider.Transact(ctx, func(ctx context.Context) error {
		switch ev.Status {
		case model.EventStatusSettled:
			updated, err := e.ticketRepo.MarkPurchased(ctx, campaignID, quotas, ev.Payer, now)
			if err != nil {
				return err
			}
			result.Updated = updated
			result.Outcome = model.OutcomePurchased
			if updated == 0 {
				result.Outcome = model.OutcomeNoOp
			}
			err = e.paymentRepo.UpsertFromEvent(ctx, ev, campaignID, model.PaymentStatusSettled, now)
			if err != nil {
				return err
			}

		case model.EventStatusReleased:
			updated, err := e.ticketRepo.ReleaseReserved(ctx, campaignID, quotas)
			if err != nil {
				return err
			}
			result.Updated = updated
			result.Outcome = model.OutcomeReleased
			if updated == 0 {
				result.Outcome = model.OutcomeNoOp
			}
			err = e.paymentRepo.UpsertFromEvent(ctx, ev, campaignID, model.PaymentStatusReleased, now)
			if err != nil {
				return err
			}

		default:
			result.Outcome = model.OutcomePending
			if ev.ProviderTransactionID != "" {
				err := e.paymentRepo.UpsertFromEvent(ctx, ev, campaignID, model.PaymentStatusPending, now)
				if err != nil {
					return err
				}
			}
		}

		return e.logRepo.Insert(ctx, auditEntry(ev, result))
	})
	if err != nil {
		e.logFailure(ctx, ev, campaignID, err)
		return model.SettlementResult{}, err
	}
	return result, nil
}

type auditDetails struct {
	Provider      string                  `json:"provider"`
	TransactionID string                  `json:"transactionId"`
	EventStatus   model.EventStatus       `json:"eventStatus"`
	Quotas        []int64                 `json:"quotas"`
	Updated       int64                   `json:"updated"`
	Outcome       model.SettlementOutcome `json:"outcome"`
	Error         string                  `json:"error,omitempty"`
}

func auditEntry(ev model.PaymentEvent, result model.SettlementResult) model.CleanupLog {
	status := model.LogStatusSuccess
	var message string
	switch result.Outcome {
	case model.OutcomePurchased:
		message = fmt.Sprintf("%d tickets purchased", result.Updated)
	case model.OutcomeReleased:
		message = fmt.Sprintf("%d tickets released", result.Updated)
	case model.OutcomePending:
		message = "payment pending, no ticket mutation"
	default:
		status = model.LogStatusWarning
		message = "no tickets in reserved state, delivery was a no-op"
	}

	details, _ := json.Marshal(auditDetails{
		Provider:      ev.Provider,
		TransactionID: ev.ProviderTransactionID,
		EventStatus:   ev.Status,
		Quotas:        result.Quotas,
		Updated:       result.Updated,
		Outcome:       result.Outcome,
	})

	return model.CleanupLog{
		Operation:  model.OperationSettlement,
		CampaignID: sql.NullString{Valid: true, String: result.CampaignID},
		Status:     status,
		Message:    message,
		Details:    details,
	}
}

// logFailure appends a best-effort error audit entry in its own
// transaction after the settlement transaction rolled back
func (e *Engine) logFailure(ctx context.Context, ev model.PaymentEvent, campaignID string, cause error) {
	details, _ := json.Marshal(auditDetails{
		Provider:      ev.Provider,
		TransactionID: ev.ProviderTransactionID,
		EventStatus:   ev.Status,
		Error:         cause.Error(),
	})

	err := e.provider.Transact(ctx, func(ctx context.Context) error {
		return e.logRepo.Insert(ctx, model.CleanupLog{
			Operation:  model.OperationSettlement,
			CampaignID: sql.NullString{Valid: true, String: campaignID},
			Status:     model.LogStatusError,
			Message:    "settlement failed",
			Details:    details,
		})
	})
	if err != nil {
		otellib.Extract(ctx).Warn("writing settlement error audit entry failed", zap.Error(err))
	}
}
