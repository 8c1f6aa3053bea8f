package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContestStatus represents the lifecycle status of a contest
type ContestStatus string

const (
	ContestStatusDraft  ContestStatus = "DRAFT"
	ContestStatusActive ContestStatus = "ACTIVE"
	ContestStatusClosed ContestStatus = "CLOSED"
)

// Contest represents a paid-vote contest (e.g. a beauty pageant)
type Contest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	StartAt       time.Time          `bson:"startAt" json:"startAt"`
	EndAt         time.Time          `bson:"endAt" json:"endAt"`
	PricePerVote  int64              `bson:"pricePerVote" json:"pricePerVote"` // minor currency units
	Currency      string             `bson:"currency" json:"currency"`
	PerVoterQuota int                `bson:"perVoterQuota" json:"perVoterQuota"`
	Status        ContestStatus      `bson:"status" json:"status"`
	TotalVotes    int64              `bson:"totalVotes" json:"totalVotes"`
	TotalAmount   int64              `bson:"totalAmount" json:"totalAmount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsOpen reports whether the contest accepts purchases at the given time.
// The voting window is half-open: [StartAt, EndAt).
func (c *Contest) IsOpen(at time.Time) bool {
	return c.Status == ContestStatusActive && !at.Before(c.StartAt) && at.Before(c.EndAt)
}
