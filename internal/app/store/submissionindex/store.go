// internal/app/store/submissionindex/store.go
package submissionindex

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("submission index not found")

// Store keeps, per (track, student), the set of submission location keys.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submission_index")}
}

// Append adds key to the student's index. Appending an existing key is a no-op.
func (s *Store) Append(ctx context.Context, track, studentID, key string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"track": track, "student_id": studentID},
		bson.M{
			"$addToSet": bson.M{"keys": key},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Get returns the student's index for track.
func (s *Store) Get(ctx context.Context, track, studentID string) (models.SubmissionIndex, error) {
	var idx models.SubmissionIndex
	err := s.c.FindOne(ctx, bson.M{"track": track, "student_id": studentID}).Decode(&idx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SubmissionIndex{}, ErrNotFound
	}
	return idx, err
}
