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

// ContestRepository implements the repositories.ContestRepository interface
type ContestRepository struct {
	collection *mongo.Collection
}

// NewContestRepository creates a new ContestRepository
func NewContestRepository(db *mongo.Database) repositories.ContestRepository {
	return &ContestRepository{
		collection: db.Collection("contests"),
	}
}

// Create creates a new contest
func (r *ContestRepository) Create(ctx context.Context, contest *models.Contest) error {
	contest.ID = primitive.NewObjectID()
	contest.CreatedAt = time.Now()
	contest.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, contest)
	return err
}

// FindByID finds a contest by ID
func (r *ContestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Contest, error) {
	var contest models.Contest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&contest)
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// FindAll finds contests with pagination, newest first
func (r *ContestRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Contest, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contests []*models.Contest
	if err := cursor.All(ctx, &contests); err != nil {
		return nil, err
	}
	return contests, nil
}

// Update replaces a contest document
func (r *ContestRepository) Update(ctx context.Context, contest *models.Contest) error {
	contest.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": contest.ID}, contest)
	return err
}

// Delete deletes a contest
func (r *ContestRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// IncrementTotals adds settled votes and amount to the contest's running counters
func (r *ContestRepository) IncrementTotals(ctx context.Context, id primitive.ObjectID, votes int, amount int64) error {
	update := bson.M{
		"$inc": bson.M{"totalVotes": int64(votes), "totalAmount": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Count counts all contests
func (r *ContestRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
