package inbox

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu   sync.Mutex
	seq  uint
	rows map[uint]*models.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uint]*models.Notification)}
}

func (s *fakeStore) Create(n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	n.ID = s.seq
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	row := *n
	s.rows[n.ID] = &row
	return nil
}

func (s *fakeStore) GetByID(id uint) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *fakeStore) TransitionState(uint, string, string, string, bool) (bool, error) {
	return false, nil
}

func (s *fakeStore) ListRetryable(int, int) ([]models.Notification, error) { return nil, nil }

func (s *fakeStore) ListForUser(recipientID uint) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, row := range s.rows {
		if row.RecipientID == recipientID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seen != out[j].Seen {
			return !out[i].Seen
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) UnreadCount(recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, row := range s.rows {
		if row.RecipientID == recipientID && !row.Seen {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkSeen(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.Seen = true
	}
	return nil
}

func (s *fakeStore) MarkAllSeen(recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.RecipientID == recipientID {
			row.Seen = true
		}
	}
	return nil
}

func (s *fakeStore) DeleteByActorAndKind(uint, uint, string) error { return nil }
func (s *fakeStore) DeleteBySubject(string, string) error          { return nil }

type fakeUsers struct {
	users map[uint]*models.User
}

func (f *fakeUsers) GetUserByID(id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUsers) GetDeviceToken(id uint) (string, error) {
	user, err := f.GetUserByID(id)
	if err != nil {
		return "", err
	}
	return user.DeviceToken, nil
}

func (f *fakeUsers) GetDisplayName(id uint) (string, error) {
	user, err := f.GetUserByID(id)
	if err != nil {
		return "", err
	}
	return user.FullName, nil
}

func (f *fakeUsers) SetDeviceToken(id uint, token string) error {
	user, err := f.GetUserByID(id)
	if err != nil {
		return err
	}
	user.DeviceToken = token
	return nil
}

func seed(t *testing.T, store *fakeStore, recipientID uint, seen bool, createdAt time.Time) uint {
	t.Helper()
	n := &models.Notification{
		RecipientID:   recipientID,
		ActorID:       1,
		Kind:          models.KindLikePost,
		Content:       "liked your post.",
		Seen:          seen,
		DeliveryState: models.StateDelivered,
		CreatedAt:     createdAt,
	}
	require.NoError(t, store.Create(n))
	return n.ID
}

func TestListOrdersUnseenFirstThenNewest(t *testing.T) {
	store := newFakeStore()
	users := &fakeUsers{users: map[uint]*models.User{1: {ID: 1, UserName: "alice", FullName: "Alice"}}}
	service := NewService(store, users)

	base := time.Now()
	seenOld := seed(t, store, 2, true, base.Add(-3*time.Hour))
	seenNew := seed(t, store, 2, true, base.Add(-1*time.Hour))
	unseenOld := seed(t, store, 2, false, base.Add(-4*time.Hour))
	unseenNew := seed(t, store, 2, false, base.Add(-2*time.Hour))

	feed, err := service.List(2)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 4)

	got := []uint{feed.Notifications[0].ID, feed.Notifications[1].ID, feed.Notifications[2].ID, feed.Notifications[3].ID}
	assert.Equal(t, []uint{unseenNew, unseenOld, seenNew, seenOld}, got)
	assert.EqualValues(t, 2, feed.UnreadCount)
}

func TestListEnrichesActor(t *testing.T) {
	store := newFakeStore()
	users := &fakeUsers{users: map[uint]*models.User{1: {ID: 1, UserName: "alice", FullName: "Alice", AvatarURL: "https://cdn/a.png"}}}
	service := NewService(store, users)

	seed(t, store, 2, false, time.Now())

	feed, err := service.List(2)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, "alice", feed.Notifications[0].Actor.UserName)
	assert.Equal(t, "Alice", feed.Notifications[0].Actor.FullName)
	assert.Equal(t, "https://cdn/a.png", feed.Notifications[0].Actor.AvatarURL)
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, &fakeUsers{users: map[uint]*models.User{}})

	id := seed(t, store, 2, false, time.Now())

	require.NoError(t, service.MarkSeen(id))
	require.NoError(t, service.MarkSeen(id), "marking an already-seen notification is a no-op success")

	row, err := store.GetByID(id)
	require.NoError(t, err)
	assert.True(t, row.Seen)
}

func TestMarkSeenUnknownID(t *testing.T) {
	service := NewService(newFakeStore(), &fakeUsers{users: map[uint]*models.User{}})

	err := service.MarkSeen(99)
	assert.ErrorIs(t, err, repositories.ErrNotificationNotFound)
}

func TestMarkAllSeen(t *testing.T) {
	store := newFakeStore()
	service := NewService(store, &fakeUsers{users: map[uint]*models.User{}})

	seed(t, store, 2, false, time.Now())
	seed(t, store, 2, false, time.Now())
	seed(t, store, 3, false, time.Now())

	require.NoError(t, service.MarkAllSeen(2))

	count, err := store.UnreadCount(2)
	require.NoError(t, err)
	assert.Zero(t, count)

	otherCount, err := store.UnreadCount(3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherCount, "other users' notifications are untouched")

	// Nothing left unseen: still a success.
	require.NoError(t, service.MarkAllSeen(2))
}
