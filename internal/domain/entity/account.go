package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// Account: внешний баланс участника в Ledger.
type Account struct {
	Principal uuid.UUID
	Balance   uint64
}

// Transfer: запись журнала движения средств. JobID равен 0 для пополнений.
type Transfer struct {
	ID        uuid.UUID
	JobID     uint64
	Principal uuid.UUID
	Kind      valueobject.TransferKind
	Amount    uint64
	CreatedAt time.Time
}

func NewTransfer(jobID uint64, principal uuid.UUID, kind valueobject.TransferKind, amount uint64) Transfer {
	return Transfer{
		ID:        uuid.New(),
		JobID:     jobID,
		Principal: principal,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// CheckDirection сверяет вид перевода с операцией Ledger: credit=true для зачислений.
func (t Transfer) CheckDirection(credit bool) error {
	if t.Kind.IsCredit() != credit {
		return apperror.New(apperror.ErrCodeLedger, "вид перевода не соответствует операции").
			WithDetail("kind", string(t.Kind))
	}
	return nil
}

// EscrowSummary: срез состояния escrow по заказу.
type EscrowSummary struct {
	JobID            uint64
	Budget           uint64
	Released         uint64
	Refunded         uint64
	Locked           uint64
	CurrentMilestone int
	MilestoneCount   int
	NextMilestone    uint64
}

func SummarizeEscrow(job *Job) EscrowSummary {
	summary := EscrowSummary{
		JobID:            job.ID,
		Budget:           job.Budget,
		Released:         job.ReleasedAmount,
		Refunded:         job.RefundedAmount,
		Locked:           job.Escrowed(),
		CurrentMilestone: job.CurrentMilestone,
		MilestoneCount:   job.Milestones.Count(),
	}
	if job.HasMoreMilestones() {
		summary.NextMilestone = job.Milestones[job.CurrentMilestone]
	}
	return summary
}
