package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StaffCollection holds teacher accounts for credential sign-in.
const StaffCollection = "staff"

// ErrStaffExists is returned when creating an account whose email is taken.
var ErrStaffExists = errors.New("staff account already exists")

// Staff is a teacher account. The password is only ever stored as a bcrypt hash.
type Staff struct {
	ID           string    `bson:"-" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	DisplayName  string    `bson:"displayName" json:"displayName"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StaffRepository looks up and stores teacher accounts. Lookups with no
// match return (nil, nil).
type StaffRepository interface {
	FindByEmail(ctx context.Context, email string) (*Staff, error)
	Create(ctx context.Context, staff *Staff) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryStaffRepository keeps accounts in process memory.
type MemoryStaffRepository struct {
	mu      sync.RWMutex
	byEmail map[string]Staff
}

func NewMemoryStaffRepository() *MemoryStaffRepository {
	return &MemoryStaffRepository{byEmail: make(map[string]Staff)}
}

func (r *MemoryStaffRepository) FindByEmail(_ context.Context, email string) (*Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryStaffRepository) Create(_ context.Context, staff *Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(staff.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrStaffExists
	}

	now := time.Now()
	staff.ID = uuid.NewString()
	staff.Email = key
	staff.CreatedAt = now
	staff.UpdatedAt = now
	r.byEmail[key] = *staff
	return nil
}

// MongoStaffRepository stores accounts in MongoDB with a unique email index.
type MongoStaffRepository struct {
	collection *mongo.Collection
}

func NewMongoStaffRepository(db *mongo.Database) *MongoStaffRepository {
	collection := db.Collection(StaffCollection)

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &MongoStaffRepository{collection: collection}
}

type mongoStaff struct {
	ObjectID primitive.ObjectID `bson:"_id,omitempty"`
	Staff    `bson:",inline"`
}

func (r *MongoStaffRepository) FindByEmail(ctx context.Context, email string) (*Staff, error) {
	var doc mongoStaff
	err := r.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	doc.Staff.ID = doc.ObjectID.Hex()
	return &doc.Staff, nil
}

func (r *MongoStaffRepository) Create(ctx context.Context, staff *Staff) error {
	now := time.Now()
	staff.Email = normalizeEmail(staff.Email)
	staff.CreatedAt = now
	staff.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, mongoStaff{Staff: *staff})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrStaffExists, err)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		staff.ID = oid.Hex()
	}
	return nil
}
