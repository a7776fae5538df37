package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepository stores reports in a Firestore collection and streams
// the ordered collection through Firestore's real-time listener.
type FirestoreRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

var _ Repository = (*FirestoreRepository)(nil)

func NewFirestoreRepository(client *firestore.Client, logger *zap.Logger) *FirestoreRepository {
	return &FirestoreRepository{client: client, logger: logger}
}

func (r *FirestoreRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(Collection)
}

func (r *FirestoreRepository) Create(ctx context.Context, report *Report) (string, error) {
	rec := report.Record()
	// zero value lets the serverTimestamp tag stamp it
	rec.ServerTime = time.Time{}

	ref, _, err := r.collection().Add(ctx, rec)
	if err != nil {
		return "", &StoreWriteError{Op: "create", Err: mapFirestoreError(err)}
	}
	return ref.ID, nil
}

func (r *FirestoreRepository) SubscribeOrdered(ctx context.Context) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	it := r.ordered().Snapshots(subCtx)
	ch := make(chan Event, 1)

	go func() {
		defer close(ch)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || subCtx.Err() != nil || status.Code(err) == codes.Canceled {
					return
				}
				err = mapFirestoreError(err)
				r.logger.Warn("Report listener stopped", zap.Error(err))
				deliver(ch, Event{Err: err})
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				deliver(ch, Event{Err: mapFirestoreError(err)})
				continue
			}
			deliver(ch, Event{Reports: r.decodeAll(docs)})
		}
	}()

	return NewSubscription(ch, cancel), nil
}

func (r *FirestoreRepository) ordered() firestore.Query {
	return r.collection().OrderBy(FieldTimestamp, firestore.Desc)
}

func (r *FirestoreRepository) ListOrdered(ctx context.Context) ([]*Report, error) {
	docs, err := r.ordered().Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	return r.decodeAll(docs), nil
}

func (r *FirestoreRepository) FindOneByField(ctx context.Context, field string, value interface{}) (*Report, error) {
	docs, err := r.collection().Where(field, "==", value).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeFirestore(docs[0])
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*Report, error) {
	doc, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapFirestoreError(err)
	}
	return decodeFirestore(doc)
}

func (r *FirestoreRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if _, err := r.collection().Doc(id).Update(ctx, updates); err != nil {
		return &StoreWriteError{Op: "update", ID: id, Err: mapFirestoreError(err)}
	}
	return nil
}

// decodeAll skips documents that do not decode so one bad write cannot hide
// the rest of the list.
func (r *FirestoreRepository) decodeAll(docs []*firestore.DocumentSnapshot) []*Report {
	list := make([]*Report, 0, len(docs))
	for _, doc := range docs {
		report, err := decodeFirestore(doc)
		if err != nil {
			r.logger.Error("Skipping undecodable report", zap.String("id", doc.Ref.ID), zap.Error(err))
			continue
		}
		list = append(list, report)
	}
	return list
}

func decodeFirestore(doc *firestore.DocumentSnapshot) (*Report, error) {
	var rec Record
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", doc.Ref.ID, err)
	}
	rec.ID = doc.Ref.ID
	return rec.Report(), nil
}

func mapFirestoreError(err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, status.Convert(err).Message())
	case codes.NotFound:
		return ErrNotFound
	}
	return err
}
