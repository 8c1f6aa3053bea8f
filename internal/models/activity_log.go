package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityLog records an administrative or settlement action for auditing
type ActivityLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Actor     string             `bson:"actor" json:"actor"`
	Action    string             `bson:"action" json:"action"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Metadata  map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
