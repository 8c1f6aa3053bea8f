package repositories

import (
	"context"

	"github.com/crownvote/pageant-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnitOfWork runs a function inside one atomic storage transaction. Every
// repository call made with the context passed to fn participates in the
// transaction; if fn returns an error the whole unit of work is rolled back.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ContestRepository defines the interface for contest data operations
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Contest, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementTotals(ctx context.Context, id primitive.ObjectID, votes int, amount int64) error
	Count(ctx context.Context) (int64, error)
}

// CandidateRepository defines the interface for candidate data operations
type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error)
	FindByContestID(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementTotals(ctx context.Context, id primitive.ObjectID, votes int, amount int64) error
}

// PaymentTransactionRepository defines the interface for payment transaction
// data operations. ClaimPending is the settlement engine's idempotency guard:
// it atomically moves a transaction from PENDING to the given terminal status
// and reports false when the transaction was no longer PENDING, meaning a
// concurrent caller already claimed it.
type PaymentTransactionRepository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	FindByRef(ctx context.Context, transactionRef string) (*models.PaymentTransaction, error)
	FindByContestID(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.PaymentTransaction, error)
	ClaimPending(ctx context.Context, transactionRef string, status models.TransactionStatus, providerRef, providerPayload string) (bool, error)
}

// VoteRepository defines the interface for materialized vote data operations
type VoteRepository interface {
	CreateMany(ctx context.Context, votes []*models.Vote) error
	CountByTransactionRef(ctx context.Context, transactionRef string) (int64, error)
	CountByCandidateID(ctx context.Context, candidateID primitive.ObjectID) (int64, error)
	TallyByContestID(ctx context.Context, contestID primitive.ObjectID) ([]models.CandidateTally, error)
}

// VoterQuotaRepository defines the interface for per-payer quota operations
type VoterQuotaRepository interface {
	Find(ctx context.Context, contestID primitive.ObjectID, payerIdentity string) (*models.VoterQuota, error)
	IncrementConsumed(ctx context.Context, contestID primitive.ObjectID, payerIdentity string, votes int) error
}

// AdminUserRepository defines the interface for admin user data operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}

// ActivityLogRepository defines the interface for activity log operations
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	FindAll(ctx context.Context, page, limit int) ([]*models.ActivityLog, error)
	Count(ctx context.Context) (int64, error)
}
