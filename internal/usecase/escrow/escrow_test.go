package escrow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/kvstore"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/escrow"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/job"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Balance(ctx context.Context, principal uuid.UUID) (uint64, error) {
	args := m.Called(ctx, principal)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockLedger) Debit(ctx context.Context, transfer entity.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *mockLedger) Credit(ctx context.Context, transfer entity.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *mockLedger) ListTransfers(ctx context.Context, jobID uint64) ([]entity.Transfer, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Transfer), args.Error(1)
}

type marketplace struct {
	repos      repository.Store
	complete   *escrow.CompleteMilestoneUseCase
	client     uuid.UUID
	freelancer uuid.UUID
	jobID      uint64
}

// newMarketplace проводит заказ через публикацию, отклик и принятие.
func newMarketplace(t *testing.T, milestones ...uint64) *marketplace {
	t.Helper()
	logger.Discard()
	ctx := context.Background()
	repos := kvstore.New(kvstore.NewMemDB()).Repositories()
	emitter := event.NoopEmitter{}
	limits := validation.DefaultLimits()

	var budget uint64
	for _, m := range milestones {
		budget += m
	}
	client, freelancer := uuid.New(), uuid.New()
	require.NoError(t, repos.Ledger.Credit(ctx, entity.NewTransfer(0, client, valueobject.TransferDeposit, budget)))

	posted, err := job.NewPostJobUseCase(repos.Jobs, repos.Ledger, repos.Transactor, limits, emitter).Execute(ctx, job.PostJobInput{
		ClientID:   client,
		Title:      "Интернет-магазин",
		Budget:     budget,
		Milestones: milestones,
	})
	require.NoError(t, err)

	_, err = bid.NewPlaceBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, limits, emitter).Execute(ctx, bid.PlaceBidInput{
		JobID:        posted.ID,
		FreelancerID: freelancer,
		Amount:       budget,
	})
	require.NoError(t, err)

	_, err = bid.NewAcceptBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, emitter).Execute(ctx, bid.AcceptBidInput{
		JobID:        posted.ID,
		ClientID:     client,
		FreelancerID: freelancer,
	})
	require.NoError(t, err)

	return &marketplace{
		repos:      repos,
		complete:   escrow.NewCompleteMilestoneUseCase(repos.Jobs, repos.Ledger, repos.Transactor, emitter),
		client:     client,
		freelancer: freelancer,
		jobID:      posted.ID,
	}
}

func (m *marketplace) balance(t *testing.T, principal uuid.UUID) uint64 {
	t.Helper()
	b, err := m.repos.Ledger.Balance(context.Background(), principal)
	require.NoError(t, err)
	return b
}

func TestCompleteMilestone_FullLifecycle(t *testing.T) {
	m := newMarketplace(t, 500, 500)
	ctx := context.Background()

	first, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: m.client})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, uint64(500), first.Released)
	assert.Equal(t, valueobject.JobStatusInProgress, first.Job.Status)
	assert.Equal(t, uint64(500), m.balance(t, m.freelancer))

	second, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: m.client})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, valueobject.JobStatusCompleted, second.Job.Status)
	assert.Equal(t, 2, second.Job.CurrentMilestone)
	assert.Equal(t, uint64(1000), m.balance(t, m.freelancer))
	assert.Equal(t, uint64(0), m.balance(t, m.client))

	_, err = m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: m.client})
	assert.True(t, errors.Is(err, apperror.ErrNoMoreMilestones))
	assert.Equal(t, uint64(1000), m.balance(t, m.freelancer))

	summary, err := escrow.NewGetEscrowSummaryUseCase(m.repos.Jobs).Execute(ctx, m.jobID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.Locked)
	assert.Equal(t, uint64(1000), summary.Released)
}

func TestCompleteMilestone_OnlyClient(t *testing.T) {
	m := newMarketplace(t, 1000)
	ctx := context.Background()

	for _, caller := range []uuid.UUID{m.freelancer, uuid.New()} {
		_, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: caller})
		assert.True(t, apperror.IsUnauthorized(err))
	}

	_, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: 77, CallerID: m.client})
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, uint64(0), m.balance(t, m.freelancer))
}

func TestCompleteMilestone_UnauthorizedBeforeNoMoreMilestones(t *testing.T) {
	m := newMarketplace(t, 1000)
	ctx := context.Background()

	_, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: m.client})
	require.NoError(t, err)

	_, err = m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: uuid.New()})
	assert.True(t, apperror.IsUnauthorized(err))
}

func TestCompleteMilestone_ConservesEscrow(t *testing.T) {
	m := newMarketplace(t, 100, 250, 650)
	ctx := context.Background()

	var released uint64
	for _, amount := range []uint64{100, 250, 650} {
		_, err := m.complete.Execute(ctx, escrow.CompleteMilestoneInput{JobID: m.jobID, CallerID: m.client})
		require.NoError(t, err)
		released += amount

		current, err := m.repos.Jobs.FindByID(ctx, m.jobID)
		require.NoError(t, err)
		assert.Equal(t, current.Budget-released, current.Escrowed())
	}

	transfers, err := escrow.NewListTransfersUseCase(m.repos.Jobs, m.repos.Ledger).Execute(ctx, m.jobID)
	require.NoError(t, err)

	var credited uint64
	for _, tr := range transfers {
		if tr.Kind.IsCredit() {
			credited += tr.Amount
		}
	}
	assert.Equal(t, uint64(1000), credited)
	assert.Len(t, transfers, 4)
}

func TestCompleteMilestone_LedgerFailureRollsBack(t *testing.T) {
	logger.Discard()
	ctx := context.Background()
	store := kvstore.New(kvstore.NewMemDB())
	repos := store.Repositories()

	client, freelancer := uuid.New(), uuid.New()
	j, err := entity.NewJob(client, "Бот", "", 600, []uint64{200, 400}, 0)
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Create(ctx, j))
	require.NoError(t, j.AssignFreelancer(freelancer))
	require.NoError(t, repos.Jobs.Update(ctx, j))

	ledger := new(mockLedger)
	ledger.On("Credit", mock.Anything, mock.MatchedBy(func(tr entity.Transfer) bool {
		return tr.Principal == freelancer && tr.Amount == 200 && tr.Kind == valueobject.TransferMilestone
	})).Return(errors.New("ledger unavailable")).Once()

	uc := escrow.NewCompleteMilestoneUseCase(repos.Jobs, ledger, store, event.NoopEmitter{})
	_, err = uc.Execute(ctx, escrow.CompleteMilestoneInput{JobID: j.ID, CallerID: client})
	require.Error(t, err)
	assert.Equal(t, apperror.ErrCodeLedger, apperror.CodeOf(err))
	ledger.AssertExpectations(t)

	reloaded, err := repos.Jobs.FindByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.CurrentMilestone)
	assert.Equal(t, uint64(0), reloaded.ReleasedAmount)
	assert.Equal(t, valueobject.JobStatusInProgress, reloaded.Status)
}

func TestCompleteMilestone_RequiresInProgress(t *testing.T) {
	logger.Discard()
	ctx := context.Background()
	repos := kvstore.New(kvstore.NewMemDB()).Repositories()

	client := uuid.New()
	j, err := entity.NewJob(client, "Бот", "", 600, []uint64{600}, 0)
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Create(ctx, j))

	uc := escrow.NewCompleteMilestoneUseCase(repos.Jobs, repos.Ledger, repos.Transactor, event.NoopEmitter{})
	_, err = uc.Execute(ctx, escrow.CompleteMilestoneInput{JobID: j.ID, CallerID: client})
	assert.True(t, errors.Is(err, apperror.ErrJobNotInProgress))
}
