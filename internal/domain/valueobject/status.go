package valueobject

import "github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusDisputed   JobStatus = "disputed"
	JobStatusCancelled  JobStatus = "cancelled"
)

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusDisputed},
	JobStatusDisputed:   {JobStatusInProgress, JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

func (s JobStatus) IsValid() bool {
	_, ok := jobTransitions[s]
	return ok
}

func (s JobStatus) CanTransitionTo(newStatus JobStatus) bool {
	for _, status := range jobTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, что после Completed и Cancelled заказ не меняется.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

func NewJobStatus(status string) (JobStatus, error) {
	s := JobStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заказа").WithDetail("status", status)
	}
	return s, nil
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

// DisputeOutcome: итог разрешения спора.
type DisputeOutcome string

const (
	DisputeOutcomeNone    DisputeOutcome = ""
	DisputeOutcomeRelease DisputeOutcome = "release"
	DisputeOutcomeRefund  DisputeOutcome = "refund"
)

func NewDisputeOutcome(outcome string) (DisputeOutcome, error) {
	switch o := DisputeOutcome(outcome); o {
	case DisputeOutcomeRelease, DisputeOutcomeRefund:
		return o, nil
	}
	return DisputeOutcomeNone, apperror.New(apperror.ErrCodeValidation, "исход спора должен быть release или refund").WithDetail("outcome", outcome)
}

// TransferKind классифицирует движения средств по заказу.
type TransferKind string

const (
	TransferEscrowLock     TransferKind = "escrow_lock"
	TransferMilestone      TransferKind = "milestone_release"
	TransferDisputeRelease TransferKind = "dispute_release"
	TransferDisputeRefund  TransferKind = "dispute_refund"
	TransferCancelRefund   TransferKind = "cancel_refund"
	TransferDeposit        TransferKind = "deposit"
)

// IsCredit сообщает, что это перевод из escrow на внешний баланс участника.
func (k TransferKind) IsCredit() bool {
	switch k {
	case TransferMilestone, TransferDisputeRelease, TransferDisputeRefund, TransferCancelRefund, TransferDeposit:
		return true
	}
	return false
}
