package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoterQuota tracks how many votes a payer identity has purchased within a
// contest. Keyed by (contestId, payerIdentity); purchasers need not hold an
// account, so the key is the normalized contact string rather than a user id.
type VoterQuota struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ContestID     primitive.ObjectID `bson:"contestId" json:"contestId"`
	PayerIdentity string             `bson:"payerIdentity" json:"payerIdentity"`
	VotesConsumed int                `bson:"votesConsumed" json:"votesConsumed"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeIdentity canonicalizes a payer identity for quota keying.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
