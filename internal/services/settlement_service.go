package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"github.com/crownvote/pageant-backend/internal/utils"
	"github.com/crownvote/pageant-backend/pkg/paygate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentGateway is the slice of the provider client the settlement flow needs
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req paygate.CheckoutRequest) (*paygate.CheckoutSession, error)
	VerifyCharge(ctx context.Context, transactionRef string) (*paygate.ChargeStatus, error)
}

// InitiateRequest carries a validated vote purchase intent
type InitiateRequest struct {
	ContestID      primitive.ObjectID
	CandidateID    primitive.ObjectID
	VoteCount      int
	ExpectedAmount int64
	PayerIdentity  string
	PayerContact   string
}

// InitiateResult is returned to the client so it can complete payment
type InitiateResult struct {
	TransactionRef string `json:"transactionRef"`
	PaymentURL     string `json:"paymentUrl"`
}

// SettlementService owns the paid-vote transaction lifecycle: opening pending
// transactions, confirming provider outcomes idempotently, and materializing
// votes, counters, and quota exactly once per transaction.
type SettlementService interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	ReportOutcome(ctx context.Context, transactionRef, outcome, providerRef string, rawPayload []byte) (models.TransactionStatus, error)
	RemainingQuota(ctx context.Context, contestID primitive.ObjectID, payerIdentity string) (int, error)
}

// errAlreadyClaimed aborts the settlement unit of work when a concurrent
// caller won the conditional claim. Not an error to the caller.
var errAlreadyClaimed = errors.New("transaction already claimed")

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

type SettlementServiceImpl struct {
	contestRepo   repositories.ContestRepository
	candidateRepo repositories.CandidateRepository
	txRepo        repositories.PaymentTransactionRepository
	voteRepo      repositories.VoteRepository
	quota         *QuotaTracker
	uow           repositories.UnitOfWork
	gateway       PaymentGateway
	callbackURL   string
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	contestRepo repositories.ContestRepository,
	candidateRepo repositories.CandidateRepository,
	txRepo repositories.PaymentTransactionRepository,
	voteRepo repositories.VoteRepository,
	quota *QuotaTracker,
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
	callbackURL string,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		contestRepo:   contestRepo,
		candidateRepo: candidateRepo,
		txRepo:        txRepo,
		voteRepo:      voteRepo,
		quota:         quota,
		uow:           uow,
		gateway:       gateway,
		callbackURL:   callbackURL,
	}
}

// Initiate validates a purchase intent, opens a payment session with the
// provider, and records a PENDING transaction. Validation order: contest
// window, candidate eligibility, amount integrity, quota.
func (s *SettlementServiceImpl) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContestNotOpen
		}
		return nil, fmt.Errorf("failed to load contest: %w", err)
	}
	if !contest.IsOpen(time.Now()) {
		return nil, ErrContestNotOpen
	}

	candidate, err := s.candidateRepo.FindByID(ctx, req.CandidateID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCandidateNotEligible
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate.ContestID != contest.ID || candidate.ApprovalStatus != models.ApprovalStatusApproved {
		return nil, ErrCandidateNotEligible
	}

	// The caller-supplied amount is an integrity check, not a trusted input.
	if req.VoteCount <= 0 || req.ExpectedAmount != int64(req.VoteCount)*contest.PricePerVote {
		return nil, ErrAmountMismatch
	}

	remaining, err := s.quota.Remaining(ctx, contest, req.PayerIdentity)
	if err != nil {
		return nil, err
	}
	if req.VoteCount > remaining {
		return nil, &QuotaExceededError{Remaining: remaining}
	}

	ref, err := utils.NewTransactionRef()
	if err != nil {
		return nil, fmt.Errorf("failed to mint transaction reference: %w", err)
	}

	session, err := s.gateway.CreateCheckout(ctx, paygate.CheckoutRequest{
		TransactionRef: ref,
		Amount:         req.ExpectedAmount,
		Currency:       contest.Currency,
		PayerContact:   req.PayerContact,
		CallbackURL:    s.callbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	tx := &models.PaymentTransaction{
		TransactionRef:     ref,
		ContestID:          contest.ID,
		CandidateID:        candidate.ID,
		RequestedVoteCount: req.VoteCount,
		ExpectedAmount:     req.ExpectedAmount,
		Currency:           contest.Currency,
		PayerIdentity:      models.NormalizeIdentity(req.PayerIdentity),
		PayerContact:       req.PayerContact,
		Status:             models.TransactionStatusPending,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record pending transaction: %w", err)
	}

	slog.Info("vote purchase initiated",
		"transactionRef", ref,
		"contestId", contest.ID.Hex(),
		"candidateId", candidate.ID.Hex(),
		"voteCount", req.VoteCount,
		"amount", req.ExpectedAmount,
	)

	return &InitiateResult{TransactionRef: ref, PaymentURL: session.PaymentURL}, nil
}

// ReportOutcome applies a provider outcome to a pending transaction. It is
// invoked by both the webhook and the client confirm poll and is safe under
// concurrent double-invocation: the first terminal write wins and every later
// call observes it without re-mutating anything.
func (s *SettlementServiceImpl) ReportOutcome(ctx context.Context, transactionRef, outcome, providerRef string, rawPayload []byte) (models.TransactionStatus, error) {
	tx, err := s.txRepo.FindByRef(ctx, transactionRef)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrTransactionNotFound
		}
		return "", fmt.Errorf("failed to load transaction: %w", err)
	}

	if tx.Status != models.TransactionStatusPending {
		slog.Info("duplicate outcome report ignored",
			"transactionRef", transactionRef,
			"recorded", tx.Status,
			"reported", outcome,
		)
		return tx.Status, nil
	}

	switch outcome {
	case paygate.OutcomeFailed:
		claimed, err := s.txRepo.ClaimPending(ctx, transactionRef, models.TransactionStatusFailed, providerRef, string(rawPayload))
		if err != nil {
			return "", fmt.Errorf("failed to record failed outcome: %w", err)
		}
		if !claimed {
			return s.currentStatus(ctx, transactionRef)
		}
		slog.Info("vote purchase failed", "transactionRef", transactionRef, "providerRef", providerRef)
		return models.TransactionStatusFailed, nil

	case paygate.OutcomeSucceeded:
		err := s.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
			claimed, err := s.txRepo.ClaimPending(txCtx, transactionRef, models.TransactionStatusSucceeded, providerRef, string(rawPayload))
			if err != nil {
				return err
			}
			if !claimed {
				return errAlreadyClaimed
			}
			return s.materialize(txCtx, tx)
		})
		if errors.Is(err, errAlreadyClaimed) {
			return s.currentStatus(ctx, transactionRef)
		}
		if err != nil {
			// The whole unit of work rolled back; the transaction is still
			// PENDING and the caller may retry.
			return "", fmt.Errorf("settlement failed: %w", err)
		}
		slog.Info("vote purchase settled",
			"transactionRef", transactionRef,
			"voteCount", tx.RequestedVoteCount,
			"amount", tx.ExpectedAmount,
		)
		return models.TransactionStatusSucceeded, nil

	default:
		return "", fmt.Errorf("unknown payment outcome %q", outcome)
	}
}

// RemainingQuota reports how many votes the payer may still purchase in the
// contest.
func (s *SettlementServiceImpl) RemainingQuota(ctx context.Context, contestID primitive.ObjectID, payerIdentity string) (int, error) {
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrContestNotOpen
		}
		return 0, fmt.Errorf("failed to load contest: %w", err)
	}
	return s.quota.Remaining(ctx, contest, payerIdentity)
}

// materialize writes the vote rows, counter increments, and quota consumption
// for a freshly claimed SUCCEEDED transaction. Runs inside the unit of work
// opened by ReportOutcome; either all of it commits or none of it does.
// Eligibility is not re-validated here: a transaction that reached SUCCEEDED
// was valid at initiation, and a contest closing mid-flight must not void a
// captured payment.
func (s *SettlementServiceImpl) materialize(ctx context.Context, tx *models.PaymentTransaction) error {
	count := tx.RequestedVoteCount
	share := tx.ExpectedAmount / int64(count)
	remainder := tx.ExpectedAmount - share*int64(count)

	votes := make([]*models.Vote, count)
	for i := range votes {
		amount := share
		if i == 0 {
			// Integer division remainder goes to the first unit so the
			// shares always sum to the amount paid.
			amount += remainder
		}
		votes[i] = &models.Vote{
			TransactionRef: tx.TransactionRef,
			ContestID:      tx.ContestID,
			CandidateID:    tx.CandidateID,
			AmountShare:    amount,
			Status:         models.VoteStatusMaterialized,
		}
	}

	if err := s.voteRepo.CreateMany(ctx, votes); err != nil {
		return fmt.Errorf("failed to write vote rows: %w", err)
	}
	if err := s.candidateRepo.IncrementTotals(ctx, tx.CandidateID, count, tx.ExpectedAmount); err != nil {
		return fmt.Errorf("failed to update candidate counters: %w", err)
	}
	if err := s.contestRepo.IncrementTotals(ctx, tx.ContestID, count, tx.ExpectedAmount); err != nil {
		return fmt.Errorf("failed to update contest counters: %w", err)
	}
	if err := s.quota.Consume(ctx, tx.ContestID, tx.PayerIdentity, count); err != nil {
		return fmt.Errorf("failed to update voter quota: %w", err)
	}
	return nil
}

// currentStatus re-reads a transaction after losing the conditional claim and
// returns whatever terminal state the winner recorded.
func (s *SettlementServiceImpl) currentStatus(ctx context.Context, transactionRef string) (models.TransactionStatus, error) {
	tx, err := s.txRepo.FindByRef(ctx, transactionRef)
	if err != nil {
		return "", fmt.Errorf("failed to re-read claimed transaction: %w", err)
	}
	return tx.Status, nil
}
