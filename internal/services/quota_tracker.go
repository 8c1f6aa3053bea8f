package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// QuotaTracker bounds how many votes one payer identity may purchase within a
// contest. It is read-only at initiation; consumption is written only by the
// settlement engine's materialization, inside its transaction. The read at
// initiate and the write at settlement are deliberately not atomic as a pair:
// two in-flight purchases can jointly overshoot the quota, but settlement
// never rejects a captured payment.
type QuotaTracker struct {
	quotaRepo repositories.VoterQuotaRepository
}

// NewQuotaTracker creates a new QuotaTracker
func NewQuotaTracker(quotaRepo repositories.VoterQuotaRepository) *QuotaTracker {
	return &QuotaTracker{quotaRepo: quotaRepo}
}

// Remaining returns how many more votes the payer may purchase in the
// contest, clamped at zero.
func (t *QuotaTracker) Remaining(ctx context.Context, contest *models.Contest, payerIdentity string) (int, error) {
	consumed := 0
	quota, err := t.quotaRepo.Find(ctx, contest.ID, models.NormalizeIdentity(payerIdentity))
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("failed to read voter quota: %w", err)
		}
	} else {
		consumed = quota.VotesConsumed
	}

	remaining := contest.PerVoterQuota - consumed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Consume records settled votes against the payer's quota. Called only from
// inside the materialization unit of work.
func (t *QuotaTracker) Consume(ctx context.Context, contestID primitive.ObjectID, payerIdentity string, votes int) error {
	return t.quotaRepo.IncrementConsumed(ctx, contestID, models.NormalizeIdentity(payerIdentity), votes)
}
