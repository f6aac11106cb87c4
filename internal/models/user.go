package models

import "time"

// User is the directory record consulted by the notification core. The full
// profile (bio, counts, auth linkage) is owned by the account service; only
// the fields needed for composing and targeting a push live here.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserName    string    `json:"user_name" gorm:"size:50;uniqueIndex"`
	FullName    string    `json:"full_name" gorm:"size:100"`
	AvatarURL   string    `json:"avatar_url"`
	DeviceToken string    `json:"-"` // FCM registration token; empty when no device is registered
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the minimal actor representation embedded in inbox responses.
type UserCompact struct {
	ID        uint   `json:"id"`
	UserName  string `json:"user_name"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		UserName:  u.UserName,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
	}
}

// SetDeviceTokenRequest registers or replaces a user's FCM device token.
type SetDeviceTokenRequest struct {
	UserID   uint   `json:"user_id" validate:"required,min=1"`
	FCMToken string `json:"fcm_token" validate:"required"`
}

// MarkAllReadRequest marks every unseen notification of a user as seen.
type MarkAllReadRequest struct {
	UserID uint `json:"user_id" validate:"required,min=1"`
}
