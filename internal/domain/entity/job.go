package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// Job: заказ с заблокированным бюджетом и графиком этапов оплаты.
type Job struct {
	ID               uint64
	ClientID         uuid.UUID
	Title            string
	Description      string
	Budget           uint64
	Milestones       valueobject.MilestoneSchedule
	CurrentMilestone int
	Status           valueobject.JobStatus
	FreelancerID     *uuid.UUID
	ReleasedAmount   uint64
	RefundedAmount   uint64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewJob создаёт открытый заказ. ID назначает репозиторий.
func NewJob(clientID uuid.UUID, title, description string, budget uint64, milestones []uint64, maxMilestones int) (*Job, error) {
	if clientID == uuid.Nil {
		return nil, apperror.ErrUnauthenticated
	}
	if title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название заказа обязательно")
	}

	schedule, err := valueobject.NewMilestoneSchedule(budget, milestones, maxMilestones)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Job{
		ClientID:    clientID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Milestones:  schedule,
		Status:      valueobject.JobStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (j *Job) IsOwnedBy(principal uuid.UUID) bool {
	return j.ClientID == principal
}

func (j *Job) IsAssignedTo(principal uuid.UUID) bool {
	return j.FreelancerID != nil && *j.FreelancerID == principal
}

// IsParticipant проверяет, что участник является клиентом или назначенным фрилансером.
func (j *Job) IsParticipant(principal uuid.UUID) bool {
	return j.IsOwnedBy(principal) || j.IsAssignedTo(principal)
}

// Escrowed возвращает сумму, которая ещё удерживается по заказу.
func (j *Job) Escrowed() uint64 {
	return j.Budget - j.ReleasedAmount - j.RefundedAmount
}

func (j *Job) HasMoreMilestones() bool {
	return j.CurrentMilestone < j.Milestones.Count()
}

// AssignFreelancer переводит заказ в работу. Единственная точка выхода из Open.
func (j *Job) AssignFreelancer(freelancerID uuid.UUID) error {
	if j.Status != valueobject.JobStatusOpen {
		return apperror.ErrJobNotOpen.WithDetail("status", string(j.Status))
	}
	if err := j.moveTo(valueobject.JobStatusInProgress); err != nil {
		return err
	}
	j.FreelancerID = &freelancerID
	return nil
}

// CompleteMilestone продвигает индекс этапа и возвращает сумму к выплате фрилансеру.
func (j *Job) CompleteMilestone() (uint64, error) {
	if !j.HasMoreMilestones() {
		return 0, apperror.ErrNoMoreMilestones.WithDetail("current_milestone", j.CurrentMilestone)
	}
	if j.Status != valueobject.JobStatusInProgress {
		return 0, apperror.ErrJobNotInProgress.WithDetail("status", string(j.Status))
	}

	amount := j.Milestones[j.CurrentMilestone]
	if j.CurrentMilestone+1 == j.Milestones.Count() {
		if err := j.moveTo(valueobject.JobStatusCompleted); err != nil {
			return 0, err
		}
	}
	j.CurrentMilestone++
	j.ReleasedAmount += amount
	j.touch()
	return amount, nil
}

// Cancel отменяет открытый заказ и возвращает сумму возврата клиенту.
func (j *Job) Cancel() (uint64, error) {
	if j.Status != valueobject.JobStatusOpen {
		return 0, apperror.ErrJobNotOpen.WithDetail("status", string(j.Status))
	}
	if err := j.moveTo(valueobject.JobStatusCancelled); err != nil {
		return 0, err
	}
	refund := j.Escrowed()
	j.RefundedAmount += refund
	return refund, nil
}

// OpenDispute замораживает заказ до разрешения спора.
func (j *Job) OpenDispute() error {
	if j.Status == valueobject.JobStatusDisputed {
		return apperror.ErrAlreadyDisputed.WithDetail("job_id", j.ID)
	}
	if j.Status != valueobject.JobStatusInProgress {
		return apperror.ErrJobNotInProgress.WithDetail("status", string(j.Status))
	}
	return j.moveTo(valueobject.JobStatusDisputed)
}

// SettleDispute распределяет остаток escrow по итогу спора и возвращает сумму перевода.
// При release остаток уходит фрилансеру и все этапы считаются оплаченными,
// при refund остаток возвращается клиенту.
func (j *Job) SettleDispute(outcome valueobject.DisputeOutcome) (uint64, error) {
	if j.Status != valueobject.JobStatusDisputed {
		return 0, apperror.New(apperror.ErrCodeInvalidState, "заказ не находится в споре").
			WithDetail("status", string(j.Status))
	}

	remaining := j.Escrowed()
	switch outcome {
	case valueobject.DisputeOutcomeRelease:
		if err := j.moveTo(valueobject.JobStatusCompleted); err != nil {
			return 0, err
		}
		j.ReleasedAmount += remaining
		j.CurrentMilestone = j.Milestones.Count()
	case valueobject.DisputeOutcomeRefund:
		if err := j.moveTo(valueobject.JobStatusCancelled); err != nil {
			return 0, err
		}
		j.RefundedAmount += remaining
	default:
		return 0, apperror.New(apperror.ErrCodeValidation, "неизвестный исход спора").
			WithDetail("outcome", string(outcome))
	}
	return remaining, nil
}

// moveTo меняет статус только по таблице переходов JobStatus.
func (j *Job) moveTo(next valueobject.JobStatus) error {
	if j.Status.IsTerminal() {
		return apperror.New(apperror.ErrCodeInvalidState, "заказ уже закрыт").
			WithDetail("status", string(j.Status))
	}
	if !j.Status.CanTransitionTo(next) {
		return apperror.New(apperror.ErrCodeInvalidState, "недопустимый переход статуса заказа").
			WithDetail("from", string(j.Status)).
			WithDetail("to", string(next))
	}
	j.Status = next
	j.touch()
	return nil
}

func (j *Job) touch() {
	j.UpdatedAt = time.Now().UTC()
}
