package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

// Ограничения по умолчанию, переопределяются конфигурацией.
const (
	DefaultMaxTitleLength       = 100
	DefaultMaxDescriptionLength = 500
	DefaultMaxProposalLength    = 500
	DefaultMaxReasonLength      = 500
)

// Limits: границы пользовательского ввода (в символах UTF-8).
type Limits struct {
	MaxTitleLength       int
	MaxDescriptionLength int
	MaxProposalLength    int
	MaxReasonLength      int
	MaxMilestones        int
}

func DefaultLimits() Limits {
	return Limits{
		MaxTitleLength:       DefaultMaxTitleLength,
		MaxDescriptionLength: DefaultMaxDescriptionLength,
		MaxProposalLength:    DefaultMaxProposalLength,
		MaxReasonLength:      DefaultMaxReasonLength,
		MaxMilestones:        valueobject.DefaultMaxMilestones,
	}
}

// ValidateLength проверяет длину строки.
func ValidateLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return apperror.New(apperror.ErrCodeValidation, field+": слишком короткое значение").
			WithDetail("field", field).
			WithDetail("min", min)
	}
	if max > 0 && length > max {
		return apperror.New(apperror.ErrCodeValidation, field+": слишком длинное значение").
			WithDetail("field", field).
			WithDetail("max", max).
			WithDetail("length", length)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.New(apperror.ErrCodeValidation, field+": не может быть пустым").
			WithDetail("field", field)
	}
	return nil
}

func (l Limits) ValidateJob(title, description string) error {
	if err := ValidateNonEmpty("title", title); err != nil {
		return err
	}
	if err := ValidateLength("title", title, 0, l.MaxTitleLength); err != nil {
		return err
	}
	return ValidateLength("description", description, 0, l.MaxDescriptionLength)
}

func (l Limits) ValidateProposal(proposal string) error {
	return ValidateLength("proposal", proposal, 0, l.MaxProposalLength)
}

func (l Limits) ValidateReason(reason string) error {
	return ValidateLength("reason", reason, 0, l.MaxReasonLength)
}
