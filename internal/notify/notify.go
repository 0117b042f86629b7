// Package notify delivers duplicate-work notifications.
//
// Delivery is best-effort by contract: the alert row is the authoritative
// state and a failed or dropped notification is only a log line, never a
// rollback.
package notify

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"

	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

// DuplicateNotice is the payload handed to notifiers when an alert fires
type DuplicateNotice struct {
	// File1 is the name of the file whose change triggered detection
	File1 string `json:"file1"`

	// File2 is the name of the existing similar file
	File2 string `json:"file2"`

	// Similarity is the formatted percentage, e.g. "85.0%"
	Similarity string `json:"similarity"`

	// Description is the alert's human-readable description
	Description string `json:"description"`
}

// Notifier dispatches a duplicate-work notice to a user. Implementations
// must be safe for concurrent use; the scan pipeline may fan out.
type Notifier interface {
	SendDuplicateAlert(ctx context.Context, userID string, notice DuplicateNotice) error
}

// LogNotifier writes notices to the process log. It is the default sink and
// doubles as the delivery record in single-operator deployments.
type LogNotifier struct{}

var _ Notifier = (*LogNotifier)(nil)

// SendDuplicateAlert implements Notifier
func (LogNotifier) SendDuplicateAlert(_ context.Context, userID string, notice DuplicateNotice) error {
	log.Printf("[NOTIFY] user=%s duplicate: %s ~ %s (%s) %s",
		userID, notice.File1, notice.File2, notice.Similarity, notice.Description)
	return nil
}

// StoreNotifier persists an in-app notification row for the user
type StoreNotifier struct {
	store storage.Storage
}

var _ Notifier = (*StoreNotifier)(nil)

// NewStoreNotifier creates a notifier backed by the persistence layer
func NewStoreNotifier(store storage.Storage) (*StoreNotifier, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &StoreNotifier{store: store}, nil
}

// SendDuplicateAlert implements Notifier
func (n *StoreNotifier) SendDuplicateAlert(ctx context.Context, userID string, notice DuplicateNotice) error {
	return n.store.CreateNotification(ctx, &types.Notification{
		UserID:  userID,
		Title:   fmt.Sprintf("Potential duplicate work: %s", notice.File1),
		Message: notice.Description,
		Kind:    "duplicate",
	})
}

// Dispatcher fans a notice out to multiple notifiers behind a token bucket.
// When the bucket is empty the notice is dropped, not queued: a scan must
// never block on notification delivery.
type Dispatcher struct {
	notifiers []Notifier
	limiter   *rate.Limiter
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. perMinute caps outbound notices;
// zero or negative disables rate limiting.
func NewDispatcher(perMinute int, notifiers ...Notifier) *Dispatcher {
	var limiter *rate.Limiter
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
	}
	return &Dispatcher{notifiers: notifiers, limiter: limiter}
}

// SendDuplicateAlert implements Notifier. Individual notifier failures are
// logged and do not stop delivery to the remaining notifiers.
func (d *Dispatcher) SendDuplicateAlert(ctx context.Context, userID string, notice DuplicateNotice) error {
	if d.limiter != nil && !d.limiter.Allow() {
		log.Printf("[NOTIFY] rate limit reached, dropping notice for user=%s (%s ~ %s)",
			userID, notice.File1, notice.File2)
		return nil
	}

	for _, n := range d.notifiers {
		if err := n.SendDuplicateAlert(ctx, userID, notice); err != nil {
			log.Printf("[NOTIFY] delivery failed: %v", err)
		}
	}
	return nil
}
