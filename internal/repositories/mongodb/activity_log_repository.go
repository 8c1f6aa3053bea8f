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

// ActivityLogRepository implements the repositories.ActivityLogRepository interface
type ActivityLogRepository struct {
	collection *mongo.Collection
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *mongo.Database) repositories.ActivityLogRepository {
	return &ActivityLogRepository{
		collection: db.Collection("activity_logs"),
	}
}

// Create inserts a new activity log entry
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindAll finds activity log entries with pagination, newest first
func (r *ActivityLogRepository) FindAll(ctx context.Context, page, limit int) ([]*models.ActivityLog, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.ActivityLog{}
	}
	return entries, nil
}

// Count counts all activity log entries
func (r *ActivityLogRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
