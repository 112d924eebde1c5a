package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/escrow-marketplace/internal/config"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/middleware"
)

// Handlers: обработчики, подключаемые к маршрутам.
type Handlers struct {
	Job      *handler.JobHandler
	Bid      *handler.BidHandler
	Escrow   *handler.EscrowHandler
	Dispute  *handler.DisputeHandler
	Rating   *handler.RatingHandler
	Account  *handler.AccountHandler
	Health   *handler.HealthHandler
	Identity *handler.IdentityHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	if cfg.IsDevelopment() && h.Identity != nil {
		api.POST("/auth/token", h.Identity.IssueDevToken)
	}

	// Чтение открыто всем.
	api.GET("/jobs", h.Job.ListJobs)
	api.GET("/jobs/:id", h.Job.GetJob)
	api.GET("/jobs/:id/bids", h.Bid.ListBids)
	api.GET("/jobs/:id/escrow", h.Escrow.GetSummary)
	api.GET("/jobs/:id/transfers", h.Escrow.ListTransfers)
	api.GET("/jobs/:id/dispute", h.Dispute.GetDispute)
	api.GET("/users/:id/rating", middleware.UUIDValidator("id"), h.Rating.GetRating)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.GET("/accounts/me", h.Account.GetMyAccount)

	mutating := protected.Group("")
	mutating.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		mutating.POST("/jobs", h.Job.PostJob)
		mutating.POST("/jobs/:id/cancel", h.Job.CancelJob)
		mutating.POST("/jobs/:id/bids", h.Bid.PlaceBid)
		mutating.POST("/jobs/:id/bids/accept", h.Bid.AcceptBid)
		mutating.POST("/jobs/:id/milestones/complete", h.Escrow.CompleteMilestone)
		mutating.POST("/jobs/:id/dispute", h.Dispute.RaiseDispute)
		mutating.POST("/jobs/:id/dispute/votes", h.Dispute.Vote)
		mutating.POST("/jobs/:id/dispute/resolve", h.Dispute.Resolve)
		mutating.POST("/users/:id/ratings", middleware.UUIDValidator("id"), h.Rating.RateUser)

		if cfg.IsDevelopment() {
			mutating.POST("/accounts/deposit", h.Account.Deposit)
		}
	}

	return r
}
