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

// CandidateRepository implements the repositories.CandidateRepository interface
type CandidateRepository struct {
	collection *mongo.Collection
}

// NewCandidateRepository creates a new CandidateRepository
func NewCandidateRepository(db *mongo.Database) repositories.CandidateRepository {
	return &CandidateRepository{
		collection: db.Collection("candidates"),
	}
}

// Create creates a new candidate
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	candidate.ID = primitive.NewObjectID()
	candidate.CreatedAt = time.Now()
	candidate.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, candidate)
	return err
}

// FindByID finds a candidate by ID
func (r *CandidateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&candidate)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// FindByContestID finds candidates in a contest with pagination, ordered by
// total votes descending so the first page doubles as the leaderboard
func (r *CandidateRepository) FindByContestID(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.Candidate, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"totalVotes": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"contestId": contestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var candidates []*models.Candidate
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// Update replaces a candidate document
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": candidate.ID}, candidate)
	return err
}

// Delete deletes a candidate
func (r *CandidateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// IncrementTotals adds settled votes and amount to the candidate's running counters
func (r *CandidateRepository) IncrementTotals(ctx context.Context, id primitive.ObjectID, votes int, amount int64) error {
	update := bson.M{
		"$inc": bson.M{"totalVotes": int64(votes), "totalAmount": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
