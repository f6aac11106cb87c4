package inbox

import (
	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
)

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

// Feed is the inbox read model returned to the UI.
type Feed struct {
	Notifications []EnrichedNotification `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
}

// Service is the read side of the notification pipeline: listing, unread
// count and the seen flag. It never touches delivery state.
type Service struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

// NewService creates an inbox Service.
func NewService(notifications repositories.NotificationRepository, users repositories.UserRepository) *Service {
	return &Service{notifications: notifications, users: users}
}

// List returns the user's notifications, unseen first and newest first
// within each group, with each row enriched by its actor.
func (s *Service) List(userID uint) (*Feed, error) {
	notifications, err := s.notifications.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.notifications.UnreadCount(userID)
	if err != nil {
		return nil, err
	}

	enriched := make([]EnrichedNotification, len(notifications))
	actorCache := make(map[uint]models.UserCompact)
	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := actorCache[n.ActorID]; ok {
			enriched[i].Actor = actor
		} else {
			user, err := s.users.GetUserByID(n.ActorID)
			if err == nil {
				compact := user.ToCompact()
				actorCache[n.ActorID] = compact
				enriched[i].Actor = compact
			}
		}
	}

	return &Feed{Notifications: enriched, UnreadCount: unreadCount}, nil
}

// MarkSeen marks one notification as seen. Marking an already-seen
// notification is a no-op success; an unknown id is ErrNotificationNotFound.
func (s *Service) MarkSeen(id uint) error {
	if _, err := s.notifications.GetByID(id); err != nil {
		return err
	}
	return s.notifications.MarkSeen(id)
}

// MarkAllSeen marks every unseen notification of the user as seen. A user
// with nothing unseen is a no-op success.
func (s *Service) MarkAllSeen(userID uint) error {
	return s.notifications.MarkAllSeen(userID)
}
