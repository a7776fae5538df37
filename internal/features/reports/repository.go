package reports

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Collection is the document collection holding reports in every backend.
const Collection = "reports"

// Field names used by the lifecycle and lookups.
const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldCategory       = "category"
	FieldClassGroup     = "classGroup"
	FieldTimestamp      = "timestamp"
	FieldStatus         = "status"
	FieldAnonymous      = "anonymous"
	FieldStudentName    = "studentName"
	FieldStudentContact = "studentContact"
	FieldAIAnalysis     = "aiAnalysis"
	FieldTrackingCode   = "trackingCode"
	FieldAdminReply     = "adminReply"
)

var (
	// ErrNotFound is the normal outcome of a lookup with no match.
	ErrNotFound = errors.New("report not found")
	// ErrPermissionDenied means the store refused the caller.
	ErrPermissionDenied = errors.New("permission denied")
)

// StoreWriteError wraps a failed create or update.
type StoreWriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreWriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s failed: %v", e.Op, e.ID, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Fields is a partial update keyed by stored field name.
type Fields map[string]interface{}

// Event is one delivery on a subscription: either a full ordered snapshot or
// an error such as ErrPermissionDenied.
type Event struct {
	Reports []*Report
	Err     error
}

// Repository is the document store behind the portal.
type Repository interface {
	// Create stores a new report and returns its id.
	Create(ctx context.Context, report *Report) (string, error)
	// SubscribeOrdered streams full snapshots ordered by timestamp, newest first.
	SubscribeOrdered(ctx context.Context) (*Subscription, error)
	// ListOrdered reads the collection once, in the same order as SubscribeOrdered.
	ListOrdered(ctx context.Context) ([]*Report, error)
	// FindOneByField returns the first report whose field equals value, or ErrNotFound.
	FindOneByField(ctx context.Context, field string, value interface{}) (*Report, error)
	Get(ctx context.Context, id string) (*Report, error)
	// UpdateFields merges fields into the stored report.
	UpdateFields(ctx context.Context, id string, fields Fields) error
}

// Subscription is a single-consumer stream of snapshots. Close releases it.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

// NewSubscription wraps a channel and the function that tears down its producer.
func NewSubscription(c <-chan Event, cancel func()) *Subscription {
	return &Subscription{C: c, cancel: cancel}
}

// Close stops delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// deliver replaces any undelivered snapshot with ev so a slow consumer only
// ever sees the latest state.
func deliver(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
