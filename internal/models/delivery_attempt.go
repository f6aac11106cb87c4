package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryAttempt is an audit record of one push delivery attempt (MongoDB).
// It is a best-effort trail for debugging undelivered notifications; losing
// an attempt record never affects delivery itself.
type DeliveryAttempt struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	NotificationID uint               `json:"notification_id" bson:"notification_id"`
	RecipientID    uint               `json:"recipient_id" bson:"recipient_id"`
	Success        bool               `json:"success" bson:"success"`
	FailureReason  string             `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	DurationMs     int64              `json:"duration_ms" bson:"duration_ms"`
	AttemptedAt    time.Time          `json:"attempted_at" bson:"attempted_at"`
}
