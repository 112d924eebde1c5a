package valueobject

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

func TestJobStatus_Transitions(t *testing.T) {
	assert.True(t, JobStatusOpen.CanTransitionTo(JobStatusInProgress))
	assert.True(t, JobStatusOpen.CanTransitionTo(JobStatusCancelled))
	assert.False(t, JobStatusOpen.CanTransitionTo(JobStatusCompleted))
	assert.True(t, JobStatusInProgress.CanTransitionTo(JobStatusDisputed))
	assert.False(t, JobStatusInProgress.CanTransitionTo(JobStatusOpen))
	assert.False(t, JobStatusCompleted.CanTransitionTo(JobStatusInProgress))
	assert.False(t, JobStatusCancelled.CanTransitionTo(JobStatusOpen))

	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
	assert.False(t, JobStatusDisputed.IsTerminal())
}

func TestNewJobStatus(t *testing.T) {
	s, err := NewJobStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, JobStatusInProgress, s)

	_, err = NewJobStatus("archived")
	assert.True(t, apperror.IsValidation(err))
}

func TestNewDisputeOutcome(t *testing.T) {
	o, err := NewDisputeOutcome("refund")
	require.NoError(t, err)
	assert.Equal(t, DisputeOutcomeRefund, o)

	_, err = NewDisputeOutcome("")
	assert.Error(t, err)
}

func TestNewMilestoneSchedule(t *testing.T) {
	tests := []struct {
		name      string
		budget    uint64
		amounts   []uint64
		max       int
		wantErr   bool
		wantCount int
	}{
		{name: "single milestone", budget: 1000, amounts: []uint64{1000}, wantCount: 1},
		{name: "three milestones", budget: 900, amounts: []uint64{300, 300, 300}, wantCount: 3},
		{name: "zero budget", budget: 0, amounts: []uint64{0}, wantErr: true},
		{name: "empty schedule", budget: 100, amounts: nil, wantErr: true},
		{name: "sum below budget", budget: 900, amounts: []uint64{300, 300}, wantErr: true},
		{name: "sum above budget", budget: 900, amounts: []uint64{500, 500}, wantErr: true},
		{name: "zero element", budget: 100, amounts: []uint64{100, 0}, wantErr: true},
		{name: "too many", budget: 3, amounts: []uint64{1, 1, 1}, max: 2, wantErr: true},
		{name: "overflow", budget: math.MaxUint64, amounts: []uint64{math.MaxUint64, 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := NewMilestoneSchedule(tt.budget, tt.amounts, tt.max)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrInvalidMilestones))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, schedule.Count())
		})
	}
}

func TestMilestoneSchedule_CopiesInput(t *testing.T) {
	amounts := []uint64{40, 60}
	schedule, err := NewMilestoneSchedule(100, amounts, 0)
	require.NoError(t, err)

	amounts[0] = 1
	assert.Equal(t, uint64(40), schedule[0])
}

func TestNewRatingValue(t *testing.T) {
	for v := uint64(MinRating); v <= MaxRating; v++ {
		rv, err := NewRatingValue(v)
		require.NoError(t, err)
		assert.Equal(t, RatingValue(v), rv)
	}

	for _, v := range []uint64{0, 6, 255} {
		_, err := NewRatingValue(v)
		assert.True(t, apperror.HasCode(err, apperror.ErrCodeInvalidRating), "value %d", v)
	}
}

func TestTransferKind_IsCredit(t *testing.T) {
	assert.False(t, TransferEscrowLock.IsCredit())
	assert.True(t, TransferMilestone.IsCredit())
	assert.True(t, TransferDisputeRefund.IsCredit())
}
