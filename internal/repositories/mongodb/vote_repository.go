package mongodb

import (
	"context"
	"time"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure VoteRepository implements the interface
var _ repositories.VoteRepository = (*VoteRepository)(nil)

// VoteRepository handles MongoDB operations for materialized votes
type VoteRepository struct {
	collection *mongo.Collection
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *mongo.Database) *VoteRepository {
	return &VoteRepository{
		collection: db.Collection("votes"),
	}
}

// EnsureIndexes creates the lookup indexes on transactionRef and candidateId
func (r *VoteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transactionRef", Value: 1}}},
		{Keys: bson.D{{Key: "candidateId", Value: 1}}},
	})
	return err
}

// CreateMany inserts all vote rows for one settled transaction
func (r *VoteRepository) CreateMany(ctx context.Context, votes []*models.Vote) error {
	now := time.Now()
	docs := make([]interface{}, len(votes))
	for i, v := range votes {
		v.ID = primitive.NewObjectID()
		v.CreatedAt = now
		docs[i] = v
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// CountByTransactionRef counts vote rows for a transaction reference
func (r *VoteRepository) CountByTransactionRef(ctx context.Context, transactionRef string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"transactionRef": transactionRef})
}

// CountByCandidateID counts vote rows for a candidate
func (r *VoteRepository) CountByCandidateID(ctx context.Context, candidateID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"candidateId": candidateID})
}

// TallyByContestID recounts votes and amounts per candidate from the vote rows
func (r *VoteRepository) TallyByContestID(ctx context.Context, contestID primitive.ObjectID) ([]models.CandidateTally, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"contestId": contestID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$candidateId",
			"votes":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amountShare"},
		}}},
		{{Key: "$sort", Value: bson.M{"votes": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tallies []models.CandidateTally
	if err := cursor.All(ctx, &tallies); err != nil {
		return nil, err
	}
	return tallies, nil
}
