package dispatcher

import (
	"errors"
	"fmt"

	"github.com/fourviews/backend/internal/models"
)

// ErrInvalidEvent rejects a malformed event before anything is persisted.
var ErrInvalidEvent = errors.New("invalid notification event")

// Event is a fully-resolved domain action. Producers resolve both user ids
// before constructing it; the dispatcher performs no fallback resolution.
type Event struct {
	RecipientID uint
	ActorID     uint
	Kind        string
	SubjectID   string
	SubjectType string
}

// Validate checks the event for structural problems.
func (e Event) Validate() error {
	if e.RecipientID == 0 {
		return fmt.Errorf("%w: missing recipient", ErrInvalidEvent)
	}
	if e.ActorID == 0 {
		return fmt.Errorf("%w: missing actor", ErrInvalidEvent)
	}
	if !models.ValidKind(e.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}

// phrases maps a notification kind to its fixed message tail. The actor's
// display name is prepended at delivery time, never stored, so a renamed
// user is always announced under the current name.
var phrases = map[string]string{
	models.KindFollow:    "started following you.",
	models.KindLikePost:  "liked your post.",
	models.KindComment:   "commented on your post.",
	models.KindLikeStory: "liked your story.",
}
