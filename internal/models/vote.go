package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoteStatus represents the status of a purchased vote
type VoteStatus string

const (
	VoteStatusMaterialized VoteStatus = "MATERIALIZED"
)

// Vote is one purchased vote unit, written when a payment transaction settles.
// The set of votes for a transaction reference is created exactly once.
type Vote struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TransactionRef string             `bson:"transactionRef" json:"transactionRef"`
	ContestID      primitive.ObjectID `bson:"contestId" json:"contestId"`
	CandidateID    primitive.ObjectID `bson:"candidateId" json:"candidateId"`
	AmountShare    int64              `bson:"amountShare" json:"amountShare"` // minor currency units
	Status         VoteStatus         `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
