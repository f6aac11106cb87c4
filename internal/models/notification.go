package models

import "time"

// Notification kinds, matching the actions that can trigger a push.
const (
	KindFollow    = "follow"
	KindLikePost  = "like_post"
	KindComment   = "comment"
	KindLikeStory = "like_story"
)

// Delivery states. A notification starts pending, moves to delivered or
// failed, and may be moved back to pending by the sweep job for a retry.
// Delivered is terminal.
const (
	StatePending   = "pending"
	StateDelivered = "delivered"
	StateFailed    = "failed"
)

// Subject types a notification can reference.
const (
	SubjectPost  = "post"
	SubjectStory = "story"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	RecipientID      uint       `json:"recipient_id" gorm:"index;not null"`
	ActorID          uint       `json:"actor_id" gorm:"index"`
	Kind             string     `json:"kind" gorm:"size:30;index"`
	SubjectID        string     `json:"subject_id,omitempty"`
	SubjectType      string     `json:"subject_type,omitempty" gorm:"size:20"`
	Content          string     `json:"content"`
	Seen             bool       `json:"seen" gorm:"default:false;index"`
	DeliveryState    string     `json:"delivery_state" gorm:"size:20;index;default:pending"`
	FailureReason    string     `json:"failure_reason,omitempty" gorm:"size:20"`
	DeliveryAttempts int        `json:"delivery_attempts" gorm:"default:0"`
	LastAttemptAt    *time.Time `json:"last_attempt_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ValidKind reports whether k is one of the known notification kinds.
func ValidKind(k string) bool {
	switch k {
	case KindFollow, KindLikePost, KindComment, KindLikeStory:
		return true
	}
	return false
}
