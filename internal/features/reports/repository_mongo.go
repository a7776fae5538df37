package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// pollInterval is used when the deployment does not support change streams.
const pollInterval = 5 * time.Second

// MongoRepository stores reports in MongoDB. Live subscriptions re-query the
// ordered collection whenever the change stream reports a write.
type MongoRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

var _ Repository = (*MongoRepository)(nil)

type mongoReport struct {
	ObjectID primitive.ObjectID `bson:"_id,omitempty"`
	Record   `bson:",inline"`
}

func NewMongoRepository(db *mongo.Database, logger *zap.Logger) *MongoRepository {
	collection := db.Collection(Collection)

	_, err := collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: FieldTimestamp, Value: -1}}},
		{Keys: bson.D{{Key: FieldTrackingCode, Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: FieldStatus, Value: 1}}},
	})
	if err != nil {
		logger.Warn("Failed to create report indexes", zap.Error(err))
	}

	return &MongoRepository{collection: collection, logger: logger}
}

func (r *MongoRepository) Create(ctx context.Context, report *Report) (string, error) {
	doc := mongoReport{Record: report.Record()}
	doc.ServerTime = time.Now()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", &StoreWriteError{Op: "create", Err: mapMongoError(err)}
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", &StoreWriteError{Op: "create", Err: fmt.Errorf("unexpected inserted id %T", result.InsertedID)}
	}
	return oid.Hex(), nil
}

func (r *MongoRepository) SubscribeOrdered(ctx context.Context) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Event, 1)

	go func() {
		defer close(ch)

		if !r.pushSnapshot(subCtx, ch) {
			return
		}

		stream, err := r.collection.Watch(subCtx, mongo.Pipeline{})
		if err != nil {
			if subCtx.Err() != nil {
				return
			}
			if mapped := mapMongoError(err); errors.Is(mapped, ErrPermissionDenied) {
				deliver(ch, Event{Err: mapped})
				return
			}
			r.logger.Warn("Change streams unavailable, polling reports", zap.Error(err), zap.Duration("interval", pollInterval))
			r.poll(subCtx, ch)
			return
		}
		defer stream.Close(context.Background())

		for stream.Next(subCtx) {
			if !r.pushSnapshot(subCtx, ch) {
				return
			}
		}
		if err := stream.Err(); err != nil && subCtx.Err() == nil {
			deliver(ch, Event{Err: mapMongoError(err)})
		}
	}()

	return NewSubscription(ch, cancel), nil
}

func (r *MongoRepository) poll(ctx context.Context, ch chan Event) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.pushSnapshot(ctx, ch) {
				return
			}
		}
	}
}

// pushSnapshot delivers the current ordered list. It returns false when the
// subscription should stop.
func (r *MongoRepository) pushSnapshot(ctx context.Context, ch chan Event) bool {
	list, err := r.ListOrdered(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		deliver(ch, Event{Err: err})
		return !errors.Is(err, ErrPermissionDenied)
	}
	deliver(ch, Event{Reports: list})
	return true
}

func (r *MongoRepository) ListOrdered(ctx context.Context) ([]*Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: FieldTimestamp, Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mapMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []mongoReport
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapMongoError(err)
	}

	list := make([]*Report, 0, len(docs))
	for _, doc := range docs {
		list = append(list, doc.report())
	}
	return list, nil
}

func (r *MongoRepository) FindOneByField(ctx context.Context, field string, value interface{}) (*Report, error) {
	var doc mongoReport
	err := r.collection.FindOne(ctx, bson.M{field: value}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, mapMongoError(err)
	}
	return doc.report(), nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoReport
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, mapMongoError(err)
	}
	return doc.report(), nil
}

func (r *MongoRepository) UpdateFields(ctx context.Context, id string, fields Fields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &StoreWriteError{Op: "update", ID: id, Err: ErrNotFound}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return &StoreWriteError{Op: "update", ID: id, Err: mapMongoError(err)}
	}
	if result.MatchedCount == 0 {
		return &StoreWriteError{Op: "update", ID: id, Err: ErrNotFound}
	}
	return nil
}

func (d mongoReport) report() *Report {
	rec := d.Record
	rec.ID = d.ObjectID.Hex()
	return rec.Report()
}

// Unauthorized (13) and AuthenticationFailed (18).
func mapMongoError(err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(13) || se.HasErrorCode(18)) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
