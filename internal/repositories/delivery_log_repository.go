package repositories

import (
	"context"
	"time"

	"github.com/fourviews/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeliveryLogRepository records the audit trail of push delivery attempts.
type DeliveryLogRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error
	GetByNotificationID(ctx context.Context, notificationID uint) ([]models.DeliveryAttempt, error)
}

// MongoDeliveryLogRepository implements DeliveryLogRepository for MongoDB
type MongoDeliveryLogRepository struct {
	collection *mongo.Collection
}

// NewMongoDeliveryLogRepository creates a new MongoDeliveryLogRepository
func NewMongoDeliveryLogRepository(db *mongo.Database) *MongoDeliveryLogRepository {
	return &MongoDeliveryLogRepository{collection: db.Collection("delivery_attempts")}
}

// RecordAttempt inserts one attempt record
func (r *MongoDeliveryLogRepository) RecordAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error {
	attempt.ID = primitive.NewObjectID()
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, attempt)
	return err
}

// GetByNotificationID retrieves all attempts for one notification, newest first
func (r *MongoDeliveryLogRepository) GetByNotificationID(ctx context.Context, notificationID uint) ([]models.DeliveryAttempt, error) {
	var attempts []models.DeliveryAttempt
	findOptions := options.Find().SetSort(bson.D{{Key: "attempted_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"notification_id": notificationID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}
