package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionStatus represents the status of a payment transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// PaymentTransaction records a vote purchase awaiting (or past) provider
// confirmation. Created once at initiation, moved to a terminal status exactly
// once, never deleted. The purchase details are kept on the row because the
// provider callback carries only the transaction reference.
type PaymentTransaction struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TransactionRef     string             `bson:"transactionRef" json:"transactionRef"`
	ContestID          primitive.ObjectID `bson:"contestId" json:"contestId"`
	CandidateID        primitive.ObjectID `bson:"candidateId" json:"candidateId"`
	RequestedVoteCount int                `bson:"requestedVoteCount" json:"requestedVoteCount"`
	ExpectedAmount     int64              `bson:"expectedAmount" json:"expectedAmount"` // minor currency units
	Currency           string             `bson:"currency" json:"currency"`
	PayerIdentity      string             `bson:"payerIdentity" json:"payerIdentity"`
	PayerContact       string             `bson:"payerContact,omitempty" json:"payerContact,omitempty"`
	Status             TransactionStatus  `bson:"status" json:"status"`
	ProviderRef        string             `bson:"providerRef,omitempty" json:"providerRef,omitempty"`
	ProviderPayload    string             `bson:"providerPayload,omitempty" json:"-"`
	SettledAt          time.Time          `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
