package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crownvote/pageant-backend/api/routes"
	"github.com/crownvote/pageant-backend/internal/config"
	"github.com/crownvote/pageant-backend/internal/handlers"
	"github.com/crownvote/pageant-backend/internal/repositories"
	mongorepo "github.com/crownvote/pageant-backend/internal/repositories/mongodb"
	"github.com/crownvote/pageant-backend/internal/services"
	mongodb "github.com/crownvote/pageant-backend/pkg/mongodb"
	"github.com/crownvote/pageant-backend/pkg/paygate"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT.Secret is not configured")
	}

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	contestRepo := mongorepo.NewContestRepository(db)
	candidateRepo := mongorepo.NewCandidateRepository(db)
	txRepo := mongorepo.NewPaymentTransactionRepository(db)
	voteRepo := mongorepo.NewVoteRepository(db)
	quotaRepo := mongorepo.NewVoterQuotaRepository(db)
	var adminRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)
	var activityRepo repositories.ActivityLogRepository = mongorepo.NewActivityLogRepository(db)
	uow := mongorepo.NewUnitOfWork(mongoClient.Mongo())

	// The settlement engine's idempotency rests on these indexes
	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := txRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to create payment transaction indexes: %v", err)
	}
	if err := voteRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to create vote indexes: %v", err)
	}
	if err := quotaRepo.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("Failed to create voter quota indexes: %v", err)
	}

	// Payment gateway
	gateway := paygate.NewClient(cfg.Paygate.BaseURL, cfg.Paygate.SecretKey, cfg.Paygate.WebhookSecret, cfg.Paygate.Mock)

	// Services
	quotaTracker := services.NewQuotaTracker(quotaRepo)
	settlementService := services.NewSettlementService(contestRepo, candidateRepo, txRepo, voteRepo, quotaTracker, uow, gateway, cfg.Paygate.CallbackURL)
	contestService := services.NewContestService(contestRepo, candidateRepo, voteRepo)
	candidateService := services.NewCandidateService(candidateRepo, contestRepo)
	authService := services.NewAuthService(adminRepo, cfg)
	activityService := services.NewActivityLogService(activityRepo)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService, activityService),
		ContestHandler:   handlers.NewContestHandler(contestService, activityService),
		CandidateHandler: handlers.NewCandidateHandler(candidateService, activityService),
		VoteHandler:      handlers.NewVoteHandler(settlementService, gateway, gateway, cfg.Paygate.Mock),
		ActivityHandler:  handlers.NewActivityHandler(activityService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	slog.Info("server starting", "port", cfg.Server.Port, "paygateMock", cfg.Paygate.Mock)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("server exiting")
}
