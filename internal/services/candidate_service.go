package services

import (
	"context"
	"errors"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CandidateService defines the interface for candidate administration
type CandidateService interface {
	CreateCandidate(ctx context.Context, candidate *models.Candidate) error
	GetCandidate(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error)
	ListByContest(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate *models.Candidate) error
	SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status models.ApprovalStatus) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id primitive.ObjectID) error
}

// Compile-time check to ensure CandidateServiceImpl implements CandidateService
var _ CandidateService = (*CandidateServiceImpl)(nil)

type CandidateServiceImpl struct {
	candidateRepo repositories.CandidateRepository
	contestRepo   repositories.ContestRepository
}

// NewCandidateService creates a new CandidateServiceImpl
func NewCandidateService(candidateRepo repositories.CandidateRepository, contestRepo repositories.ContestRepository) *CandidateServiceImpl {
	return &CandidateServiceImpl{
		candidateRepo: candidateRepo,
		contestRepo:   contestRepo,
	}
}

func (s *CandidateServiceImpl) CreateCandidate(ctx context.Context, candidate *models.Candidate) error {
	if candidate.FullName == "" {
		return errors.New("full name is required")
	}
	// The contest must exist before a candidate can reference it
	if _, err := s.contestRepo.FindByID(ctx, candidate.ContestID); err != nil {
		return err
	}
	if candidate.ApprovalStatus == "" {
		candidate.ApprovalStatus = models.ApprovalStatusPending
	}
	return s.candidateRepo.Create(ctx, candidate)
}

func (s *CandidateServiceImpl) GetCandidate(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error) {
	return s.candidateRepo.FindByID(ctx, id)
}

func (s *CandidateServiceImpl) ListByContest(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.Candidate, error) {
	return s.candidateRepo.FindByContestID(ctx, contestID, page, limit)
}

func (s *CandidateServiceImpl) UpdateCandidate(ctx context.Context, candidate *models.Candidate) error {
	if candidate.FullName == "" {
		return errors.New("full name is required")
	}

	existing, err := s.candidateRepo.FindByID(ctx, candidate.ID)
	if err != nil {
		return err
	}

	// Contest assignment and counters are immutable through this path
	candidate.ContestID = existing.ContestID
	candidate.TotalVotes = existing.TotalVotes
	candidate.TotalAmount = existing.TotalAmount
	candidate.CreatedAt = existing.CreatedAt

	return s.candidateRepo.Update(ctx, candidate)
}

func (s *CandidateServiceImpl) SetApprovalStatus(ctx context.Context, id primitive.ObjectID, status models.ApprovalStatus) (*models.Candidate, error) {
	switch status {
	case models.ApprovalStatusPending, models.ApprovalStatusApproved, models.ApprovalStatusRejected:
	default:
		return nil, errors.New("invalid approval status")
	}

	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate.ApprovalStatus = status
	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *CandidateServiceImpl) DeleteCandidate(ctx context.Context, id primitive.ObjectID) error {
	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if candidate.TotalVotes > 0 {
		return errors.New("cannot delete a candidate with settled votes")
	}
	return s.candidateRepo.Delete(ctx, id)
}
