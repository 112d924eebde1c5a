package valueobject

import (
	"math"

	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// DefaultMaxMilestones ограничивает длину графика этапов.
const DefaultMaxMilestones = 10

// MilestoneSchedule: упорядоченные суммы этапов в минимальных единицах валюты.
type MilestoneSchedule []uint64

// NewMilestoneSchedule проверяет, что этапы непусты, положительны и в сумме дают бюджет.
func NewMilestoneSchedule(budget uint64, amounts []uint64, maxMilestones int) (MilestoneSchedule, error) {
	if budget == 0 {
		return nil, apperror.ErrInvalidMilestones.WithDetail("budget", budget)
	}
	if len(amounts) == 0 {
		return nil, apperror.ErrInvalidMilestones.WithDetail("milestones", 0)
	}
	if maxMilestones <= 0 {
		maxMilestones = DefaultMaxMilestones
	}
	if len(amounts) > maxMilestones {
		return nil, apperror.ErrInvalidMilestones.
			WithDetail("milestones", len(amounts)).
			WithDetail("max", maxMilestones)
	}

	var sum uint64
	for i, amount := range amounts {
		if amount == 0 {
			return nil, apperror.ErrInvalidMilestones.WithDetail("index", i)
		}
		if sum > math.MaxUint64-amount {
			return nil, apperror.ErrInvalidMilestones.WithDetail("index", i)
		}
		sum += amount
	}
	if sum != budget {
		return nil, apperror.ErrInvalidMilestones.WithDetail("sum", sum).WithDetail("budget", budget)
	}

	schedule := make(MilestoneSchedule, len(amounts))
	copy(schedule, amounts)
	return schedule, nil
}

func (m MilestoneSchedule) Count() int {
	return len(m)
}

// RatingValue: оценка пользователя от 1 до 5.
type RatingValue uint8

const (
	MinRating = 1
	MaxRating = 5
)

func NewRatingValue(value uint64) (RatingValue, error) {
	if value < MinRating || value > MaxRating {
		return 0, apperror.ErrInvalidRating.WithDetail("value", value)
	}
	return RatingValue(value), nil
}
