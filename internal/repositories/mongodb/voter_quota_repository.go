package mongodb

import (
	"context"
	"time"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure VoterQuotaRepository implements the interface
var _ repositories.VoterQuotaRepository = (*VoterQuotaRepository)(nil)

// VoterQuotaRepository handles MongoDB operations for VoterQuota
type VoterQuotaRepository struct {
	collection *mongo.Collection
}

// NewVoterQuotaRepository creates a new VoterQuotaRepository
func NewVoterQuotaRepository(db *mongo.Database) *VoterQuotaRepository {
	return &VoterQuotaRepository{
		collection: db.Collection("voter_quotas"),
	}
}

// EnsureIndexes creates the unique composite index on (contestId, payerIdentity)
func (r *VoterQuotaRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "contestId", Value: 1},
			{Key: "payerIdentity", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Find finds the quota record for a payer within a contest
func (r *VoterQuotaRepository) Find(ctx context.Context, contestID primitive.ObjectID, payerIdentity string) (*models.VoterQuota, error) {
	var quota models.VoterQuota
	filter := bson.M{"contestId": contestID, "payerIdentity": payerIdentity}
	err := r.collection.FindOne(ctx, filter).Decode(&quota)
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// IncrementConsumed upserts the quota record and adds the settled vote count
func (r *VoterQuotaRepository) IncrementConsumed(ctx context.Context, contestID primitive.ObjectID, payerIdentity string, votes int) error {
	filter := bson.M{"contestId": contestID, "payerIdentity": payerIdentity}
	update := bson.M{
		"$inc": bson.M{"votesConsumed": votes},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}
