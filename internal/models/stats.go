package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CandidateTally is one candidate's vote totals within a contest
type CandidateTally struct {
	CandidateID primitive.ObjectID `bson:"_id" json:"candidateId"`
	Votes       int64              `bson:"votes" json:"votes"`
	Amount      int64              `bson:"amount" json:"amount"`
}

// ContestStats reports a contest's running counters alongside a recount
// derived from the vote rows, so drift is visible to operators.
type ContestStats struct {
	ContestID   primitive.ObjectID `json:"contestId"`
	TotalVotes  int64              `json:"totalVotes"`
	TotalAmount int64              `json:"totalAmount"`
	Candidates  []*Candidate       `json:"candidates"`
	Recount     []CandidateTally   `json:"recount"`
}
