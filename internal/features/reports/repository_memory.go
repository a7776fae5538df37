package reports

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps reports in process. It backs tests and the
// STORE_BACKEND=memory mode.
type MemoryRepository struct {
	mu          sync.RWMutex
	docs        map[string]Record
	subscribers map[int]chan Event
	nextSub     int

	denyReads  bool
	writeErr   error
	readErr    error
	writeCalls int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		docs:        make(map[string]Record),
		subscribers: make(map[int]chan Event),
	}
}

// DenyReads makes subscriptions and lookups fail with ErrPermissionDenied.
func (r *MemoryRepository) DenyReads(deny bool) {
	r.mu.Lock()
	r.denyReads = deny
	r.mu.Unlock()
	r.broadcast()
}

// FailWrites makes Create and UpdateFields fail with err until reset with nil.
func (r *MemoryRepository) FailWrites(err error) {
	r.mu.Lock()
	r.writeErr = err
	r.mu.Unlock()
}

// FailReads makes lookups fail with err until reset with nil.
func (r *MemoryRepository) FailReads(err error) {
	r.mu.Lock()
	r.readErr = err
	r.mu.Unlock()
}

// WriteCalls counts attempted writes, failed ones included.
func (r *MemoryRepository) WriteCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writeCalls
}

// Raw returns the stored record for id as persisted.
func (r *MemoryRepository) Raw(id string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.docs[id]
	return rec, ok
}

// Subscribers returns the number of open subscriptions.
func (r *MemoryRepository) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

func (r *MemoryRepository) Create(ctx context.Context, report *Report) (string, error) {
	r.mu.Lock()
	r.writeCalls++
	if r.writeErr != nil {
		err := r.writeErr
		r.mu.Unlock()
		return "", &StoreWriteError{Op: "create", Err: err}
	}

	rec := report.Record()
	rec.ID = uuid.NewString()
	rec.ServerTime = time.Now()
	r.docs[rec.ID] = rec
	r.mu.Unlock()

	r.broadcast()
	return rec.ID, nil
}

func (r *MemoryRepository) SubscribeOrdered(ctx context.Context) (*Subscription, error) {
	ch := make(chan Event, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	deliver(ch, r.snapshotLocked())
	r.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-subCtx.Done()
		r.mu.Lock()
		delete(r.subscribers, id)
		close(ch)
		r.mu.Unlock()
	}()

	return NewSubscription(ch, cancel), nil
}

func (r *MemoryRepository) ListOrdered(ctx context.Context) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErrLocked(); err != nil {
		return nil, err
	}

	sorted := r.sortedLocked()
	list := make([]*Report, 0, len(sorted))
	for _, rec := range sorted {
		list = append(list, rec.Report())
	}
	return list, nil
}

func (r *MemoryRepository) FindOneByField(ctx context.Context, field string, value interface{}) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErrLocked(); err != nil {
		return nil, err
	}

	for _, rec := range r.sortedLocked() {
		if fieldValue(rec, field) == value {
			return rec.Report(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErrLocked(); err != nil {
		return nil, err
	}

	rec, ok := r.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Report(), nil
}

func (r *MemoryRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	r.mu.Lock()
	r.writeCalls++
	if r.writeErr != nil {
		err := r.writeErr
		r.mu.Unlock()
		return &StoreWriteError{Op: "update", ID: id, Err: err}
	}

	rec, ok := r.docs[id]
	if !ok {
		r.mu.Unlock()
		return &StoreWriteError{Op: "update", ID: id, Err: ErrNotFound}
	}
	for name, value := range fields {
		if err := setField(&rec, name, value); err != nil {
			r.mu.Unlock()
			return &StoreWriteError{Op: "update", ID: id, Err: err}
		}
	}
	r.docs[id] = rec
	r.mu.Unlock()

	r.broadcast()
	return nil
}

func (r *MemoryRepository) readErrLocked() error {
	if r.denyReads {
		return ErrPermissionDenied
	}
	return r.readErr
}

func (r *MemoryRepository) sortedLocked() []Record {
	out := make([]Record, 0, len(r.docs))
	for _, rec := range r.docs {
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp == out[j].Timestamp {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

func (r *MemoryRepository) snapshotLocked() Event {
	if r.denyReads {
		return Event{Err: ErrPermissionDenied}
	}
	sorted := r.sortedLocked()
	list := make([]*Report, 0, len(sorted))
	for _, rec := range sorted {
		list = append(list, rec.Report())
	}
	return Event{Reports: list}
}

func (r *MemoryRepository) broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.subscribers) == 0 {
		return
	}
	for _, ch := range r.subscribers {
		deliver(ch, r.snapshotLocked())
	}
}

func fieldValue(rec Record, field string) interface{} {
	switch field {
	case FieldTitle:
		return rec.Title
	case FieldDescription:
		return rec.Description
	case FieldCategory:
		return rec.Category
	case FieldClassGroup:
		return rec.ClassGroup
	case FieldTimestamp:
		return rec.Timestamp
	case FieldStatus:
		return rec.Status
	case FieldAnonymous:
		return rec.Anonymous
	case FieldTrackingCode:
		return rec.TrackingCode
	case FieldAdminReply:
		return rec.AdminReply
	}
	return nil
}

func setField(rec *Record, field string, value interface{}) error {
	switch field {
	case FieldStatus:
		s, ok := value.(Status)
		if !ok {
			return fmt.Errorf("field %s: unexpected type %T", field, value)
		}
		rec.Status = s
	case FieldAdminReply:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s: unexpected type %T", field, value)
		}
		rec.AdminReply = s
	case FieldAIAnalysis:
		a, ok := value.(*AIAnalysis)
		if !ok {
			return fmt.Errorf("field %s: unexpected type %T", field, value)
		}
		cp := *a
		rec.AIAnalysis = &cp
	default:
		return fmt.Errorf("field %s is not updatable", field)
	}
	return nil
}
