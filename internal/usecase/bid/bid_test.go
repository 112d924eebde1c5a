package bid_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/kvstore"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/escrow-marketplace/internal/validation"
)

type fixture struct {
	repos  repository.Store
	place  *bid.PlaceBidUseCase
	list   *bid.ListBidsUseCase
	accept *bid.AcceptBidUseCase
	client uuid.UUID
	jobID  uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Discard()
	repos := kvstore.New(kvstore.NewMemDB()).Repositories()
	emitter := event.NoopEmitter{}

	client := uuid.New()
	job, err := entity.NewJob(client, "Мобильное приложение", "", 1000, []uint64{500, 500}, 0)
	require.NoError(t, err)
	require.NoError(t, repos.Jobs.Create(context.Background(), job))

	return &fixture{
		repos:  repos,
		place:  bid.NewPlaceBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, validation.DefaultLimits(), emitter),
		list:   bid.NewListBidsUseCase(repos.Jobs, repos.Bids),
		accept: bid.NewAcceptBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, emitter),
		client: client,
		jobID:  job.ID,
	}
}

func (f *fixture) placeBid(t *testing.T, freelancer uuid.UUID, amount uint64) {
	t.Helper()
	_, err := f.place.Execute(context.Background(), bid.PlaceBidInput{
		JobID:        f.jobID,
		FreelancerID: freelancer,
		Amount:       amount,
		Proposal:     "Сделаю за две недели",
	})
	require.NoError(t, err)
}

func TestPlaceBidUseCase_OnePerFreelancer(t *testing.T) {
	f := newFixture(t)
	freelancer := uuid.New()
	f.placeBid(t, freelancer, 900)

	_, err := f.place.Execute(context.Background(), bid.PlaceBidInput{JobID: f.jobID, FreelancerID: freelancer, Amount: 800})
	assert.True(t, errors.Is(err, apperror.ErrAlreadyBidded))

	bids, err := f.list.Execute(context.Background(), f.jobID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(900), bids[0].Amount)
	assert.Equal(t, valueobject.BidStatusPending, bids[0].Status)
}

func TestPlaceBidUseCase_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.place.Execute(ctx, bid.PlaceBidInput{JobID: 42, FreelancerID: uuid.New(), Amount: 100})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.place.Execute(ctx, bid.PlaceBidInput{JobID: f.jobID, FreelancerID: f.client, Amount: 100})
	assert.True(t, apperror.HasCode(err, apperror.ErrCodeBadRequest))

	_, err = f.place.Execute(ctx, bid.PlaceBidInput{JobID: f.jobID, FreelancerID: uuid.New(), Amount: 0})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.place.Execute(ctx, bid.PlaceBidInput{JobID: f.jobID, FreelancerID: uuid.New(), Amount: 10, Proposal: strings.Repeat("x", 501)})
	assert.True(t, apperror.IsValidation(err))
}

func TestAcceptBidUseCase_FanOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chosen, other1, other2 := uuid.New(), uuid.New(), uuid.New()
	f.placeBid(t, other1, 700)
	f.placeBid(t, chosen, 1000)
	f.placeBid(t, other2, 800)

	job, err := f.accept.Execute(ctx, bid.AcceptBidInput{JobID: f.jobID, ClientID: f.client, FreelancerID: chosen})
	require.NoError(t, err)
	assert.Equal(t, valueobject.JobStatusInProgress, job.Status)
	require.NotNil(t, job.FreelancerID)
	assert.Equal(t, chosen, *job.FreelancerID)

	bids, err := f.list.Execute(ctx, f.jobID)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	accepted := 0
	for _, b := range bids {
		if b.FreelancerID == chosen {
			assert.Equal(t, valueobject.BidStatusAccepted, b.Status)
			accepted++
			continue
		}
		assert.Equal(t, valueobject.BidStatusRejected, b.Status)
	}
	assert.Equal(t, 1, accepted)

	_, err = f.place.Execute(ctx, bid.PlaceBidInput{JobID: f.jobID, FreelancerID: uuid.New(), Amount: 100})
	assert.True(t, errors.Is(err, apperror.ErrJobNotOpen))

	_, err = f.accept.Execute(ctx, bid.AcceptBidInput{JobID: f.jobID, ClientID: f.client, FreelancerID: other1})
	assert.True(t, errors.Is(err, apperror.ErrJobNotOpen))
}

func TestAcceptBidUseCase_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	freelancer := uuid.New()
	f.placeBid(t, freelancer, 1000)

	_, err := f.accept.Execute(ctx, bid.AcceptBidInput{JobID: f.jobID, ClientID: uuid.New(), FreelancerID: freelancer})
	assert.True(t, apperror.IsUnauthorized(err))

	_, err = f.accept.Execute(ctx, bid.AcceptBidInput{JobID: f.jobID, ClientID: f.client, FreelancerID: uuid.New()})
	assert.True(t, errors.Is(err, apperror.ErrBidNotFound))

	job, err := f.repos.Jobs.FindByID(ctx, f.jobID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.JobStatusOpen, job.Status)
	assert.Nil(t, job.FreelancerID)
}

func TestListBidsUseCase_JobNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.list.Execute(context.Background(), 404)
	assert.True(t, apperror.IsNotFound(err))

	bids, err := f.list.Execute(context.Background(), f.jobID)
	require.NoError(t, err)
	assert.Empty(t, bids)
}
