package repositories

import (
	"errors"

	"github.com/fourviews/backend/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a user id does not exist in the directory.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the user/device directory consumed by the notification
// core: device token and display name lookups, plus the token registration
// write. Token reads always hit the database so a freshly registered device
// is visible to the very next delivery attempt.
type UserRepository interface {
	GetUserByID(id uint) (*models.User, error)
	GetDeviceToken(id uint) (string, error)
	GetDisplayName(id uint) (string, error)
	SetDeviceToken(id uint, token string) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetDeviceToken returns the user's current FCM token, empty when no device
// has been registered.
func (r *PostgresUserRepository) GetDeviceToken(id uint) (string, error) {
	user, err := r.GetUserByID(id)
	if err != nil {
		return "", err
	}
	return user.DeviceToken, nil
}

// GetDisplayName returns the user's full name for message composition.
func (r *PostgresUserRepository) GetDisplayName(id uint) (string, error) {
	user, err := r.GetUserByID(id)
	if err != nil {
		return "", err
	}
	return user.FullName, nil
}

// SetDeviceToken stores the user's FCM token.
func (r *PostgresUserRepository) SetDeviceToken(id uint, token string) error {
	tx := r.db.Model(&models.User{}).Where("id = ?", id).Update("device_token", token)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
