package dispatcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/push"
	"github.com/fourviews/backend/internal/repositories"
)

// pushTitle is the fixed title of every push message.
const pushTitle = "4Views Social notification"

// fallbackActorName is used when the actor's display name cannot be resolved.
const fallbackActorName = "Someone"

// Directory resolves the recipient's device token and the actor's display
// name at attempt time.
type Directory interface {
	GetDeviceToken(id uint) (string, error)
	GetDisplayName(id uint) (string, error)
}

// Sender delivers one composed message to one device.
type Sender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// DeliveryLog records the audit trail of attempts. Optional; may be nil.
type DeliveryLog interface {
	RecordAttempt(ctx context.Context, attempt *models.DeliveryAttempt) error
}

// Config tunes the dispatcher's internal delivery workers.
type Config struct {
	Workers        int
	QueueSize      int
	AttemptTimeout time.Duration
}

// Dispatcher owns notification creation and delivery-attempt orchestration.
// Notify persists the record and hands the delivery attempt to a bounded
// worker pool; the caller's request never waits on the push gateway.
type Dispatcher struct {
	repo           repositories.NotificationRepository
	directory      Directory
	sender         Sender
	deliveryLog    DeliveryLog
	attemptTimeout time.Duration

	tasks  chan uint
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Dispatcher and starts its delivery workers.
func New(repo repositories.NotificationRepository, directory Directory, sender Sender, deliveryLog DeliveryLog, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		repo:           repo,
		directory:      directory,
		sender:         sender,
		deliveryLog:    deliveryLog,
		attemptTimeout: cfg.AttemptTimeout,
		tasks:          make(chan uint, cfg.QueueSize),
		ctx:            ctx,
		cancel:         cancel,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Notify turns a domain event into a persisted notification and queues its
// first delivery attempt. A self-directed event is suppressed: no record is
// created and (nil, nil) is returned. The returned notification confirms
// persistence only; delivery happens asynchronously and its failures are
// recorded in the delivery state, never surfaced here.
func (d *Dispatcher) Notify(ctx context.Context, event Event) (*models.Notification, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if event.RecipientID == event.ActorID {
		return nil, nil
	}

	notification := &models.Notification{
		RecipientID:   event.RecipientID,
		ActorID:       event.ActorID,
		Kind:          event.Kind,
		SubjectID:     event.SubjectID,
		SubjectType:   event.SubjectType,
		Content:       phrases[event.Kind],
		DeliveryState: models.StatePending,
	}
	if err := d.repo.Create(notification); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	select {
	case d.tasks <- notification.ID:
	default:
		// Queue full: leave the row pending, the sweep job will pick it up.
		log.Printf("delivery queue full, deferring notification %d to sweep", notification.ID)
	}

	return notification, nil
}

// CancelFollow removes the outstanding follow notification from actor to
// recipient. Called on unfollow so a notification about a relationship that
// no longer exists is neither delivered nor shown.
func (d *Dispatcher) CancelFollow(actorID, recipientID uint) error {
	return d.repo.DeleteByActorAndKind(actorID, recipientID, models.KindFollow)
}

// CancelSubject removes every notification referencing a deleted post or
// story.
func (d *Dispatcher) CancelSubject(subjectType, subjectID string) error {
	return d.repo.DeleteBySubject(subjectType, subjectID)
}

// Shutdown stops the workers and waits for in-flight attempts to finish.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case id := <-d.tasks:
			d.Attempt(d.ctx, id, models.StatePending)
		case <-d.ctx.Done():
			return
		}
	}
}

// Attempt runs one delivery attempt for the notification, expecting it to
// currently be in state from. The state transition is a compare-and-set: if
// a concurrent attempt moved the row first, this attempt commits nothing.
// All delivery errors are absorbed into the delivery state.
func (d *Dispatcher) Attempt(ctx context.Context, id uint, from string) {
	notification, err := d.repo.GetByID(id)
	if err != nil {
		log.Printf("delivery attempt for notification %d: %v", id, err)
		return
	}
	if notification.DeliveryState != from {
		return
	}

	deviceToken, err := d.directory.GetDeviceToken(notification.RecipientID)
	if err != nil {
		// Directory read failure, not a delivery verdict: leave the row
		// in its current state for the sweep job.
		log.Printf("device token lookup for notification %d: %v", id, err)
		return
	}

	start := time.Now()
	sendErr := d.deliver(ctx, notification, deviceToken)

	var committed bool
	if sendErr == nil {
		committed, err = d.repo.TransitionState(id, from, models.StateDelivered, "", true)
	} else {
		reason := string(push.ReasonOf(sendErr))
		committed, err = d.repo.TransitionState(id, from, models.StateFailed, reason, true)
	}
	if err != nil {
		log.Printf("state transition for notification %d: %v", id, err)
		return
	}
	if !committed {
		// Lost the race against a concurrent attempt; its result stands.
		return
	}

	if d.deliveryLog != nil {
		attempt := &models.DeliveryAttempt{
			NotificationID: id,
			RecipientID:    notification.RecipientID,
			Success:        sendErr == nil,
			DurationMs:     time.Since(start).Milliseconds(),
			AttemptedAt:    start,
		}
		if sendErr != nil {
			attempt.FailureReason = string(push.ReasonOf(sendErr))
		}
		if logErr := d.deliveryLog.RecordAttempt(ctx, attempt); logErr != nil {
			log.Printf("recording delivery attempt for notification %d: %v", id, logErr)
		}
	}
}

// deliver composes the message with the actor's current display name and
// calls the gateway under the attempt timeout.
func (d *Dispatcher) deliver(ctx context.Context, notification *models.Notification, deviceToken string) error {
	if deviceToken == "" {
		// Dominant real-world failure: the user never registered a device.
		// No network call is made.
		return &push.GatewayError{Reason: push.ReasonNoToken}
	}

	actorName, err := d.directory.GetDisplayName(notification.ActorID)
	if err != nil || actorName == "" {
		actorName = fallbackActorName
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	return d.sender.Send(attemptCtx, deviceToken, pushTitle, actorName+" "+notification.Content)
}
