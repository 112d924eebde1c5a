package app

import (
	"github.com/ignatzorin/escrow-marketplace/internal/config"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/policy"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/identity"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/router"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/account"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/bid"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/dispute"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/escrow"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/job"
	"github.com/ignatzorin/escrow-marketplace/internal/usecase/rating"
)

// NewHandlers собирает use case'ы и обработчики поверх хранилища.
func NewHandlers(cfg *config.Config, storage *Storage, emitter event.Emitter, tokens *identity.TokenManager) router.Handlers {
	repos := storage.Repos
	eligibility := policy.NewVoterEligibility(cfg.Arbiters, cfg.ExcludeParties)

	return router.Handlers{
		Job: handler.NewJobHandler(
			job.NewPostJobUseCase(repos.Jobs, repos.Ledger, repos.Transactor, cfg.Limits, emitter),
			job.NewGetJobUseCase(repos.Jobs),
			job.NewListJobsUseCase(repos.Jobs),
			job.NewCancelJobUseCase(repos.Jobs, repos.Bids, repos.Ledger, repos.Transactor, emitter),
		),
		Bid: handler.NewBidHandler(
			bid.NewPlaceBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, cfg.Limits, emitter),
			bid.NewListBidsUseCase(repos.Jobs, repos.Bids),
			bid.NewAcceptBidUseCase(repos.Jobs, repos.Bids, repos.Transactor, emitter),
		),
		Escrow: handler.NewEscrowHandler(
			escrow.NewCompleteMilestoneUseCase(repos.Jobs, repos.Ledger, repos.Transactor, emitter),
			escrow.NewGetEscrowSummaryUseCase(repos.Jobs),
			escrow.NewListTransfersUseCase(repos.Jobs, repos.Ledger),
		),
		Dispute: handler.NewDisputeHandler(
			dispute.NewRaiseDisputeUseCase(repos.Jobs, repos.Disputes, repos.Transactor, cfg.Limits, emitter),
			dispute.NewGetDisputeUseCase(repos.Disputes),
			dispute.NewVoteUseCase(repos.Jobs, repos.Disputes, repos.Ledger, repos.Transactor, eligibility, cfg.Dispute, emitter),
			dispute.NewResolveUseCase(repos.Jobs, repos.Disputes, repos.Ledger, repos.Transactor, cfg.Dispute, emitter),
		),
		Rating: handler.NewRatingHandler(
			rating.NewRateUserUseCase(repos.Ratings, repos.Transactor, emitter),
			rating.NewGetRatingUseCase(repos.Ratings),
		),
		Account: handler.NewAccountHandler(
			account.NewGetBalanceUseCase(repos.Ledger),
			account.NewDepositUseCase(repos.Ledger, repos.Transactor, emitter),
		),
		Health:   handler.NewHealthHandler(storage.Driver, storage.Ping),
		Identity: handler.NewIdentityHandler(tokens),
	}
}
