package repositories

import (
	"errors"
	"time"

	"github.com/fourviews/backend/internal/models"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification id does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	// TransitionState atomically moves a notification from one delivery
	// state to another. It reports false when the row was not in the
	// expected state, which means a concurrent attempt already moved it.
	TransitionState(id uint, from, to, reason string, countAttempt bool) (bool, error)
	// ListRetryable returns pending notifications plus failed ones still
	// under the attempt ceiling, oldest update first.
	ListRetryable(ceiling, limit int) ([]models.Notification, error)
	ListForUser(recipientID uint) ([]models.Notification, error)
	UnreadCount(recipientID uint) (int64, error)
	MarkSeen(id uint) error
	MarkAllSeen(recipientID uint) error
	DeleteByActorAndKind(actorID, recipientID uint, kind string) error
	DeleteBySubject(subjectType, subjectID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(notification *models.Notification) error {
	if notification.DeliveryState == "" {
		notification.DeliveryState = models.StatePending
	}
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) TransitionState(id uint, from, to, reason string, countAttempt bool) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"delivery_state": to,
		"failure_reason": reason,
	}
	if countAttempt {
		updates["delivery_attempts"] = gorm.Expr("delivery_attempts + 1")
		updates["last_attempt_at"] = &now
	}

	tx := r.db.Model(&models.Notification{}).
		Where("id = ? AND delivery_state = ?", id, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) ListRetryable(ceiling, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("delivery_state = ? OR (delivery_state = ? AND delivery_attempts < ?)",
			models.StatePending, models.StateFailed, ceiling).
		Order("updated_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) ListForUser(recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("seen ASC").
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) UnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND seen = false", recipientID).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkSeen(id uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).Update("seen", true).Error
}

func (r *postgresNotificationRepository) MarkAllSeen(recipientID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND seen = false", recipientID).
		Update("seen", true).Error
}

func (r *postgresNotificationRepository) DeleteByActorAndKind(actorID, recipientID uint, kind string) error {
	return r.db.
		Where("actor_id = ? AND recipient_id = ? AND kind = ?", actorID, recipientID, kind).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteBySubject(subjectType, subjectID string) error {
	return r.db.
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Delete(&models.Notification{}).Error
}
