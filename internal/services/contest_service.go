package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContestService defines the interface for contest administration
type ContestService interface {
	CreateContest(ctx context.Context, contest *models.Contest) error
	GetContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error)
	ListContests(ctx context.Context, page, limit int) ([]*models.Contest, error)
	UpdateContest(ctx context.Context, contest *models.Contest) error
	DeleteContest(ctx context.Context, id primitive.ObjectID) error
	GetContestStats(ctx context.Context, id primitive.ObjectID) (*models.ContestStats, error)
}

// Compile-time check to ensure ContestServiceImpl implements ContestService
var _ ContestService = (*ContestServiceImpl)(nil)

type ContestServiceImpl struct {
	contestRepo   repositories.ContestRepository
	candidateRepo repositories.CandidateRepository
	voteRepo      repositories.VoteRepository
}

// NewContestService creates a new ContestServiceImpl
func NewContestService(contestRepo repositories.ContestRepository, candidateRepo repositories.CandidateRepository, voteRepo repositories.VoteRepository) *ContestServiceImpl {
	return &ContestServiceImpl{
		contestRepo:   contestRepo,
		candidateRepo: candidateRepo,
		voteRepo:      voteRepo,
	}
}

func (s *ContestServiceImpl) CreateContest(ctx context.Context, contest *models.Contest) error {
	if err := validateContest(contest); err != nil {
		return err
	}
	if contest.Status == "" {
		contest.Status = models.ContestStatusDraft
	}
	return s.contestRepo.Create(ctx, contest)
}

func (s *ContestServiceImpl) GetContest(ctx context.Context, id primitive.ObjectID) (*models.Contest, error) {
	return s.contestRepo.FindByID(ctx, id)
}

func (s *ContestServiceImpl) ListContests(ctx context.Context, page, limit int) ([]*models.Contest, error) {
	return s.contestRepo.FindAll(ctx, page, limit)
}

func (s *ContestServiceImpl) UpdateContest(ctx context.Context, contest *models.Contest) error {
	if err := validateContest(contest); err != nil {
		return err
	}

	existing, err := s.contestRepo.FindByID(ctx, contest.ID)
	if err != nil {
		return err
	}
	if !validStatusTransition(existing.Status, contest.Status) {
		return fmt.Errorf("cannot move contest from %s to %s", existing.Status, contest.Status)
	}

	// Counters are owned by the settlement engine; administrative updates
	// must not clobber them.
	contest.TotalVotes = existing.TotalVotes
	contest.TotalAmount = existing.TotalAmount
	contest.CreatedAt = existing.CreatedAt

	return s.contestRepo.Update(ctx, contest)
}

func (s *ContestServiceImpl) DeleteContest(ctx context.Context, id primitive.ObjectID) error {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if contest.Status == models.ContestStatusActive {
		return errors.New("cannot delete an active contest")
	}
	return s.contestRepo.Delete(ctx, id)
}

// GetContestStats returns the running counters alongside a recount derived
// from the vote rows so operators can spot drift.
func (s *ContestServiceImpl) GetContestStats(ctx context.Context, id primitive.ObjectID) (*models.ContestStats, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.candidateRepo.FindByContestID(ctx, id, 1, 100)
	if err != nil {
		return nil, err
	}

	recount, err := s.voteRepo.TallyByContestID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ContestStats{
		ContestID:   contest.ID,
		TotalVotes:  contest.TotalVotes,
		TotalAmount: contest.TotalAmount,
		Candidates:  candidates,
		Recount:     recount,
	}, nil
}

func validateContest(contest *models.Contest) error {
	if contest.Name == "" {
		return errors.New("name is required")
	}
	if !contest.StartAt.Before(contest.EndAt) {
		return errors.New("start time must be before end time")
	}
	if contest.PricePerVote <= 0 {
		return errors.New("price per vote must be positive")
	}
	if contest.PerVoterQuota <= 0 {
		return errors.New("per-voter quota must be positive")
	}
	return nil
}

// validStatusTransition allows DRAFT -> ACTIVE -> CLOSED and staying put
func validStatusTransition(from, to models.ContestStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.ContestStatusDraft:
		return to == models.ContestStatusActive
	case models.ContestStatusActive:
		return to == models.ContestStatusClosed
	default:
		return false
	}
}
