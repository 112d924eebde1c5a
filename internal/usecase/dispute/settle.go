package dispute

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// settlement закрывает спор и переводит остаток escrow в рамках текущей транзакции.
type settlement struct {
	jobRepo     repository.JobRepository
	disputeRepo repository.DisputeRepository
	ledger      repository.Ledger
}

type settleResult struct {
	recipient uuid.UUID
	amount    uint64
	outcome   valueobject.DisputeOutcome
}

func (s settlement) settle(
	ctx context.Context,
	job *entity.Job,
	dispute *entity.Dispute,
	outcome valueobject.DisputeOutcome,
	resolvedBy *uuid.UUID,
	events *event.Buffer,
) (settleResult, error) {
	amount, err := job.SettleDispute(outcome)
	if err != nil {
		return settleResult{}, err
	}
	if err := dispute.Resolve(outcome, resolvedBy); err != nil {
		return settleResult{}, err
	}

	recipient := job.ClientID
	kind := valueobject.TransferDisputeRefund
	if outcome == valueobject.DisputeOutcomeRelease {
		recipient = *job.FreelancerID
		kind = valueobject.TransferDisputeRelease
	}

	if amount > 0 {
		if err := s.ledger.Credit(ctx, entity.NewTransfer(job.ID, recipient, kind, amount)); err != nil {
			return settleResult{}, apperror.Ensure(err, apperror.ErrCodeLedger, "ошибка перевода средств")
		}
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return settleResult{}, err
	}
	if err := s.disputeRepo.Update(ctx, dispute); err != nil {
		return settleResult{}, err
	}

	e := event.Event{
		Type:       event.TypeDisputeResolved,
		JobID:      job.ID,
		Principal:  recipient,
		Amount:     amount,
		Attributes: map[string]string{"outcome": string(outcome)},
	}
	if resolvedBy != nil {
		e.Attributes["resolved_by"] = resolvedBy.String()
	}
	events.Add(e)
	if job.Status == valueobject.JobStatusCompleted {
		events.Add(event.Event{Type: event.TypeJobCompleted, JobID: job.ID, Principal: recipient})
	} else {
		events.Add(event.Event{Type: event.TypeJobCancelled, JobID: job.ID, Principal: recipient, Amount: amount})
	}
	return settleResult{recipient: recipient, amount: amount, outcome: outcome}, nil
}
