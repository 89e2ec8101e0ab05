// internal/app/store/assignments/store.go
package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("assignment not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Create inserts a new assignment, stamping ID and created_at.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// Get loads an assignment by id within its track.
func (s *Store) Get(ctx context.Context, track string, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id, "track": track}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Assignment{}, ErrNotFound
	}
	return a, err
}

// ListOpen returns the track's assignments that have no deadline or whose
// deadline is after now, newest first.
func (s *Store) ListOpen(ctx context.Context, track string, now time.Time) ([]models.Assignment, error) {
	filter := bson.M{
		"track": track,
		"$or": bson.A{
			bson.M{"deadline": bson.M{"$exists": false}},
			bson.M{"deadline": nil},
			bson.M{"deadline": bson.M{"$gt": now}},
		},
	}
	return s.find(ctx, filter)
}

// List returns assignments for track (all tracks when empty), newest first.
func (s *Store) List(ctx context.Context, track string) ([]models.Assignment, error) {
	filter := bson.M{}
	if track != "" {
		filter["track"] = track
	}
	return s.find(ctx, filter)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
