package routes

import (
	"github.com/crownvote/pageant-backend/internal/config"
	"github.com/crownvote/pageant-backend/internal/handlers"
	"github.com/crownvote/pageant-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	ContestHandler   *handlers.ContestHandler
	CandidateHandler *handlers.CandidateHandler
	VoteHandler      *handlers.VoteHandler
	ActivityHandler  *handlers.ActivityHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)

		// Contest browsing is public so voters can see contests and leaderboards
		public.GET("/contests", deps.ContestHandler.ListContests)
		public.GET("/contests/:id", deps.ContestHandler.GetContest)
		public.GET("/contests/:id/stats", deps.ContestHandler.GetContestStats)
		public.GET("/contests/:id/candidates", deps.CandidateHandler.ListByContest)
		public.GET("/candidates/:id", deps.CandidateHandler.GetCandidate)

		// Paid-vote flow
		votes := public.Group("/votes")
		{
			votes.POST("/initiate", deps.VoteHandler.InitiateVote)
			votes.POST("/:ref/confirm", deps.VoteHandler.ConfirmVote)
			votes.GET("/quota", deps.VoteHandler.RemainingQuota)
		}

		// Provider callback; authenticated by its HMAC signature
		public.POST("/webhooks/paygate", deps.VoteHandler.HandleWebhook)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.POST("/auth/register", deps.AuthHandler.Register)

		contests := protected.Group("/contests")
		{
			contests.POST("", deps.ContestHandler.CreateContest)
			contests.PUT("/:id", deps.ContestHandler.UpdateContest)
			contests.DELETE("/:id", deps.ContestHandler.DeleteContest)
			contests.POST("/:id/candidates", deps.CandidateHandler.CreateCandidate)
		}

		candidates := protected.Group("/candidates")
		{
			candidates.PUT("/:id", deps.CandidateHandler.UpdateCandidate)
			candidates.PUT("/:id/approval", deps.CandidateHandler.SetApproval)
			candidates.DELETE("/:id", deps.CandidateHandler.DeleteCandidate)
		}

		activity := protected.Group("/activity")
		{
			activity.GET("", deps.ActivityHandler.ListActivity)
			activity.GET("/count", deps.ActivityHandler.GetActivityCount)
		}
	}

	return router
}
