package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalStatus represents the review status of a candidate
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Candidate represents a contestant in a contest
type Candidate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ContestID      primitive.ObjectID `bson:"contestId" json:"contestId"`
	FullName       string             `bson:"fullName" json:"fullName"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	PhotoURL       string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	ApprovalStatus ApprovalStatus     `bson:"approvalStatus" json:"approvalStatus"`
	TotalVotes     int64              `bson:"totalVotes" json:"totalVotes"`
	TotalAmount    int64              `bson:"totalAmount" json:"totalAmount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
