package dispute_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/policy"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/kvstore"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/dispute"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type recorder struct {
	events []event.Event
}

func (r *recorder) Emit(e event.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) count(eventType string) int {
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type failingLedger struct {
	repository.Ledger
}

func (failingLedger) Credit(context.Context, entity.Transfer) error {
	return errors.New("ledger unavailable")
}

type fixture struct {
	repos      repository.Store
	events     *recorder
	raise      *dispute.RaiseDisputeUseCase
	vote       *dispute.VoteUseCase
	resolve    *dispute.ResolveUseCase
	get        *dispute.GetDisputeUseCase
	client     uuid.UUID
	freelancer uuid.UUID
	authority  uuid.UUID
	jobID      uint64
}

// newFixture создаёт заказ [300, 700] в работе с оплаченным первым этапом.
func newFixture(t *testing.T, resolution policy.Resolution) *fixture {
	t.Helper()
	logger.Discard()
	ctx := context.Background()
	repos := kvstore.New(kvstore.NewMemDB()).Repositories()
	rec := &recorder{}

	client, freelancer, authority := uuid.New(), uuid.New(), uuid.New()
	job, err := entity.NewJob(client, "Дизайн", "", 1000, []uint64{300, 700}, 0)
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Create(ctx, job))
	require.NoError(t, job.AssignFreelancer(freelancer))
	_, err = job.CompleteMilestone()
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Update(ctx, job))

	resolution.Authorities = policy.NewPrincipalSet(authority)
	eligibility := policy.NewVoterEligibility(nil, false)
	return &fixture{
		repos:      repos,
		events:     rec,
		raise:      dispute.NewRaiseDisputeUseCase(repos.Jobs, repos.Disputes, repos.Transactor, validation.DefaultLimits(), rec),
		vote:       dispute.NewVoteUseCase(repos.Jobs, repos.Disputes, repos.Ledger, repos.Transactor, eligibility, resolution, rec),
		resolve:    dispute.NewResolveUseCase(repos.Jobs, repos.Disputes, repos.Ledger, repos.Transactor, resolution, rec),
		get:        dispute.NewGetDisputeUseCase(repos.Disputes),
		client:     client,
		freelancer: freelancer,
		authority:  authority,
		jobID:      job.ID,
	}
}

func (f *fixture) raiseDispute(t *testing.T) {
	t.Helper()
	_, err := f.raise.Execute(context.Background(), dispute.RaiseDisputeInput{
		JobID:    f.jobID,
		CallerID: f.client,
		Reason:   "Работа не соответствует требованиям",
	})
	require.NoError(t, err)
}

func (f *fixture) castVote(t *testing.T, release bool) *entity.Dispute {
	t.Helper()
	d, err := f.vote.Execute(context.Background(), dispute.VoteInput{JobID: f.jobID, VoterID: uuid.New(), ForRelease: release})
	require.NoError(t, err)
	return d
}

func (f *fixture) job(t *testing.T) *entity.Job {
	t.Helper()
	j, err := f.repos.Jobs.FindByID(context.Background(), f.jobID)
	require.NoError(t, err)
	return j
}

func (f *fixture) balance(t *testing.T, principal uuid.UUID) uint64 {
	t.Helper()
	b, err := f.repos.Ledger.Balance(context.Background(), principal)
	require.NoError(t, err)
	return b
}

func TestRaiseDispute(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	ctx := context.Background()

	_, err := f.raise.Execute(ctx, dispute.RaiseDisputeInput{JobID: f.jobID, CallerID: uuid.New()})
	assert.True(t, apperror.IsUnauthorized(err))

	f.raiseDispute(t)
	assert.Equal(t, valueobject.JobStatusDisputed, f.job(t).Status)

	d, err := f.get.Execute(ctx, f.jobID)
	require.NoError(t, err)
	assert.False(t, d.Resolved)
	assert.Equal(t, f.client, d.InitiatorID)
	assert.Equal(t, uint64(0), d.TotalVotes())

	_, err = f.raise.Execute(ctx, dispute.RaiseDisputeInput{JobID: f.jobID, CallerID: f.freelancer})
	assert.True(t, errors.Is(err, apperror.ErrAlreadyDisputed))

	_, err = f.raise.Execute(ctx, dispute.RaiseDisputeInput{JobID: 500, CallerID: f.client})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRaiseDispute_RequiresInProgress(t *testing.T) {
	logger.Discard()
	ctx := context.Background()
	repos := kvstore.New(kvstore.NewMemDB()).Repositories()
	client := uuid.New()
	job, err := entity.NewJob(client, "Дизайн", "", 100, []uint64{100}, 0)
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Create(ctx, job))

	uc := dispute.NewRaiseDisputeUseCase(repos.Jobs, repos.Disputes, repos.Transactor, validation.DefaultLimits(), event.NoopEmitter{})
	_, err = uc.Execute(ctx, dispute.RaiseDisputeInput{JobID: job.ID, CallerID: client})
	assert.True(t, errors.Is(err, apperror.ErrJobNotInProgress))

	_, err = repos.Disputes.FindByJobID(ctx, job.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestVote_CountsAndRejectsRepeat(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	ctx := context.Background()

	_, err := f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: uuid.New(), ForRelease: true})
	assert.True(t, errors.Is(err, apperror.ErrDisputeNotFound))

	f.raiseDispute(t)
	voter := uuid.New()
	d, err := f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: voter, ForRelease: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), d.VotesRelease)
	assert.Equal(t, uint64(0), d.VotesRefund)

	_, err = f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: voter, ForRelease: false})
	assert.True(t, errors.Is(err, apperror.ErrAlreadyVoted))

	stored, err := f.get.Execute(ctx, f.jobID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.VotesRelease)
	assert.Equal(t, uint64(0), stored.VotesRefund)
	assert.Len(t, stored.Votes, 1)
}

func TestVote_PartiesCanVoteByDefault(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)
	ctx := context.Background()

	_, err := f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: f.client, ForRelease: false})
	require.NoError(t, err)
	d, err := f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: f.freelancer, ForRelease: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), d.VotesRelease)
	assert.Equal(t, uint64(1), d.VotesRefund)
}

func TestVote_ExcludedPartiesCannotVote(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)
	vote := dispute.NewVoteUseCase(f.repos.Jobs, f.repos.Disputes, f.repos.Ledger, f.repos.Transactor,
		policy.NewVoterEligibility(nil, true), policy.DefaultResolution(), f.events)

	for _, party := range []uuid.UUID{f.client, f.freelancer} {
		_, err := vote.Execute(context.Background(), dispute.VoteInput{JobID: f.jobID, VoterID: party, ForRelease: true})
		assert.True(t, apperror.IsUnauthorized(err))
	}

	_, err := vote.Execute(context.Background(), dispute.VoteInput{JobID: f.jobID, VoterID: uuid.New(), ForRelease: true})
	assert.NoError(t, err)
}

func TestVote_QuorumLedgerFailureRollsBack(t *testing.T) {
	resolution := policy.DefaultResolution()
	resolution.Quorum = 1
	f := newFixture(t, resolution)
	f.raiseDispute(t)
	ctx := context.Background()

	vote := dispute.NewVoteUseCase(f.repos.Jobs, f.repos.Disputes, failingLedger{Ledger: f.repos.Ledger}, f.repos.Transactor,
		policy.NewVoterEligibility(nil, false), resolution, f.events)
	voter := uuid.New()
	_, err := vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: voter, ForRelease: false})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeLedger, apperror.CodeOf(err))

	stored, err := f.get.Execute(ctx, f.jobID)
	require.NoError(t, err)
	assert.False(t, stored.Resolved)
	assert.Equal(t, uint64(0), stored.VotesRelease)
	assert.Equal(t, uint64(0), stored.VotesRefund)
	assert.Empty(t, stored.Votes)

	j := f.job(t)
	assert.Equal(t, valueobject.JobStatusDisputed, j.Status)
	assert.Equal(t, uint64(700), j.Escrowed())
	assert.Equal(t, 0, f.events.count(event.TypeDisputeVoted))
	assert.Equal(t, 0, f.events.count(event.TypeDisputeResolved))

	// Голос не засчитан, поэтому тот же участник может проголосовать снова.
	d, err := f.vote.Execute(ctx, dispute.VoteInput{JobID: f.jobID, VoterID: voter, ForRelease: false})
	require.NoError(t, err)
	assert.True(t, d.Resolved)
}

func TestResolve_LedgerFailureRollsBack(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)
	ctx := context.Background()
	f.castVote(t, true)

	resolution := policy.DefaultResolution()
	resolution.Authorities = policy.NewPrincipalSet(f.authority)
	resolve := dispute.NewResolveUseCase(f.repos.Jobs, f.repos.Disputes, failingLedger{Ledger: f.repos.Ledger}, f.repos.Transactor, resolution, f.events)

	_, err := resolve.Execute(ctx, dispute.ResolveInput{JobID: f.jobID, CallerID: f.authority, Outcome: valueobject.DisputeOutcomeRelease})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeLedger, apperror.CodeOf(err))

	stored, err := f.get.Execute(ctx, f.jobID)
	require.NoError(t, err)
	assert.False(t, stored.Resolved)
	assert.Nil(t, stored.ResolvedBy)
	assert.Len(t, stored.Votes, 1)

	j := f.job(t)
	assert.Equal(t, valueobject.JobStatusDisputed, j.Status)
	assert.Equal(t, uint64(300), j.ReleasedAmount)
	assert.Equal(t, 1, j.CurrentMilestone)

	balance, err := f.repos.Ledger.Balance(ctx, f.freelancer)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
	assert.Equal(t, 0, f.events.count(event.TypeDisputeResolved))
}

func TestVote_QuorumRefund(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)

	f.castVote(t, true)
	f.castVote(t, false)
	d := f.castVote(t, false)

	assert.True(t, d.Resolved)
	assert.Equal(t, valueobject.DisputeOutcomeRefund, d.Outcome)
	assert.Nil(t, d.ResolvedBy)

	job := f.job(t)
	assert.Equal(t, valueobject.JobStatusCancelled, job.Status)
	assert.Equal(t, uint64(0), job.Escrowed())
	assert.Equal(t, uint64(700), f.balance(t, f.client))
	assert.Equal(t, 1, f.events.count(event.TypeDisputeResolved))

	_, err := f.vote.Execute(context.Background(), dispute.VoteInput{JobID: f.jobID, VoterID: uuid.New(), ForRelease: true})
	assert.True(t, errors.Is(err, apperror.ErrDisputeResolved))
}

func TestVote_QuorumRelease(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)

	f.castVote(t, true)
	f.castVote(t, true)
	d := f.castVote(t, false)

	assert.Equal(t, valueobject.DisputeOutcomeRelease, d.Outcome)
	job := f.job(t)
	assert.Equal(t, valueobject.JobStatusCompleted, job.Status)
	assert.Equal(t, uint64(1000), job.ReleasedAmount)
	assert.Equal(t, uint64(700), f.balance(t, f.freelancer))
}

func TestVote_TieBreak(t *testing.T) {
	tests := []struct {
		name     string
		tieBreak valueobject.DisputeOutcome
		want     valueobject.DisputeOutcome
		status   valueobject.JobStatus
	}{
		{name: "default refund", tieBreak: valueobject.DisputeOutcomeRefund, want: valueobject.DisputeOutcomeRefund, status: valueobject.JobStatusCancelled},
		{name: "configured release", tieBreak: valueobject.DisputeOutcomeRelease, want: valueobject.DisputeOutcomeRelease, status: valueobject.JobStatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolution := policy.DefaultResolution()
			resolution.Quorum = 2
			resolution.TieBreak = tt.tieBreak
			f := newFixture(t, resolution)
			f.raiseDispute(t)

			f.castVote(t, true)
			d := f.castVote(t, false)
			assert.Equal(t, tt.want, d.Outcome)
			assert.Equal(t, tt.status, f.job(t).Status)
		})
	}
}

func TestVote_NoAutoResolve(t *testing.T) {
	resolution := policy.DefaultResolution()
	resolution.AutoResolve = false
	f := newFixture(t, resolution)
	f.raiseDispute(t)

	for i := 0; i < 5; i++ {
		f.castVote(t, true)
	}
	d, err := f.get.Execute(context.Background(), f.jobID)
	require.NoError(t, err)
	assert.False(t, d.Resolved)
	assert.Equal(t, uint64(5), d.VotesRelease)
	assert.Equal(t, valueobject.JobStatusDisputed, f.job(t).Status)
}

func TestResolve_Authority(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	ctx := context.Background()
	f.raiseDispute(t)
	f.castVote(t, true)

	_, err := f.resolve.Execute(ctx, dispute.ResolveInput{JobID: f.jobID, CallerID: f.client})
	assert.True(t, apperror.IsUnauthorized(err))

	d, err := f.resolve.Execute(ctx, dispute.ResolveInput{JobID: f.jobID, CallerID: f.authority})
	require.NoError(t, err)
	assert.True(t, d.Resolved)
	assert.Equal(t, valueobject.DisputeOutcomeRelease, d.Outcome)
	require.NotNil(t, d.ResolvedBy)
	assert.Equal(t, f.authority, *d.ResolvedBy)
	assert.Equal(t, uint64(700), f.balance(t, f.freelancer))

	_, err = f.resolve.Execute(ctx, dispute.ResolveInput{JobID: f.jobID, CallerID: f.authority})
	assert.True(t, errors.Is(err, apperror.ErrDisputeResolved))
}

func TestResolve_ExplicitOutcome(t *testing.T) {
	f := newFixture(t, policy.DefaultResolution())
	f.raiseDispute(t)
	f.castVote(t, true)

	d, err := f.resolve.Execute(context.Background(), dispute.ResolveInput{
		JobID:    f.jobID,
		CallerID: f.authority,
		Outcome:  valueobject.DisputeOutcomeRefund,
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.DisputeOutcomeRefund, d.Outcome)
	assert.Equal(t, uint64(700), f.balance(t, f.client))
	assert.Equal(t, uint64(0), f.balance(t, f.freelancer))
}
