package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

func TestValidateJob(t *testing.T) {
	l := DefaultLimits()

	assert.NoError(t, l.ValidateJob("Лендинг", "Нужна вёрстка"))
	assert.True(t, apperror.IsValidation(l.ValidateJob("   ", "")))
	assert.NoError(t, l.ValidateJob(strings.Repeat("я", 100), ""))
	assert.True(t, apperror.IsValidation(l.ValidateJob(strings.Repeat("я", 101), "")))
	assert.True(t, apperror.IsValidation(l.ValidateJob("t", strings.Repeat("d", 501))))
}

func TestValidateProposalAndReason(t *testing.T) {
	l := DefaultLimits()

	assert.NoError(t, l.ValidateProposal(""))
	assert.Error(t, l.ValidateProposal(strings.Repeat("p", 501)))
	assert.NoError(t, l.ValidateReason(strings.Repeat("r", 500)))
	assert.Error(t, l.ValidateReason(strings.Repeat("r", 501)))
}

func TestValidateLength_Details(t *testing.T) {
	err := ValidateLength("title", "abcdef", 0, 3)
	appErr, ok := err.(*apperror.AppError)
	if assert.True(t, ok) {
		assert.Equal(t, 3, appErr.Details["max"])
		assert.Equal(t, 6, appErr.Details["length"])
	}
}
