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

// Compile-time check to ensure PaymentTransactionRepository implements the interface
var _ repositories.PaymentTransactionRepository = (*PaymentTransactionRepository)(nil)

// PaymentTransactionRepository handles MongoDB operations for PaymentTransaction
type PaymentTransactionRepository struct {
	collection *mongo.Collection
}

// NewPaymentTransactionRepository creates a new PaymentTransactionRepository
func NewPaymentTransactionRepository(db *mongo.Database) *PaymentTransactionRepository {
	return &PaymentTransactionRepository{
		collection: db.Collection("payment_transactions"),
	}
}

// EnsureIndexes creates the unique index on transactionRef
func (r *PaymentTransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transactionRef", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a new payment transaction
func (r *PaymentTransactionRepository) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

// FindByRef finds a payment transaction by its transaction reference
func (r *PaymentTransactionRepository) FindByRef(ctx context.Context, transactionRef string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.collection.FindOne(ctx, bson.M{"transactionRef": transactionRef}).Decode(&tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByContestID finds payment transactions for a contest with pagination
func (r *PaymentTransactionRepository) FindByContestID(ctx context.Context, contestID primitive.ObjectID, page, limit int) ([]*models.PaymentTransaction, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"contestId": contestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*models.PaymentTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// ClaimPending conditionally moves a PENDING transaction to the given terminal
// status. The filter on status is the mutual-exclusion point: when two callers
// race, only one update matches and the loser gets (false, nil).
func (r *PaymentTransactionRepository) ClaimPending(ctx context.Context, transactionRef string, status models.TransactionStatus, providerRef, providerPayload string) (bool, error) {
	now := time.Now()
	set := bson.M{
		"status":    status,
		"updatedAt": now,
	}
	if providerRef != "" {
		set["providerRef"] = providerRef
	}
	if providerPayload != "" {
		set["providerPayload"] = providerPayload
	}
	if status == models.TransactionStatusSucceeded {
		set["settledAt"] = now
	}

	filter := bson.M{
		"transactionRef": transactionRef,
		"status":         models.TransactionStatusPending,
	}
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
