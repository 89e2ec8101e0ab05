// internal/app/store/profiles/store.go
package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrDuplicate = errors.New("profile already exists for this track")
)

// Store persists profiles and the student → track directory.
type Store struct {
	c   *mongo.Collection
	dir *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("profiles"),
		dir: db.Collection("profile_directory"),
	}
}

// Create inserts a profile. (track, student_id) is unique.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.NameCI = text.Fold(p.Name)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicate
		}
		return models.Profile{}, err
	}
	return p, nil
}

// Get fetches the profile for studentID inside one track partition.
func (s *Store) Get(ctx context.Context, track, studentID string) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"track": track, "student_id": studentID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, ErrNotFound
	}
	return p, err
}

// LookupTrack returns the track recorded for studentID in the directory.
func (s *Store) LookupTrack(ctx context.Context, studentID string) (string, error) {
	var e models.DirectoryEntry
	err := s.dir.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Track, nil
}

// PutDirectory records (or corrects) the track that holds studentID's profile.
func (s *Store) PutDirectory(ctx context.Context, studentID, track string) error {
	_, err := s.dir.UpdateOne(ctx,
		bson.M{"student_id": studentID},
		bson.M{"$set": bson.M{"track": track, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ClaimDirectory inserts the directory entry for studentID, failing with
// ErrDuplicate when one exists. uniq_directory_student makes this the
// create-if-absent guard for onboarding.
func (s *Store) ClaimDirectory(ctx context.Context, studentID, track string) error {
	_, err := s.dir.InsertOne(ctx, models.DirectoryEntry{
		StudentID: studentID,
		Track:     track,
		UpdatedAt: time.Now().UTC(),
	})
	if wafflemongo.IsDup(err) {
		return ErrDuplicate
	}
	return err
}

// ReleaseDirectory removes studentID's entry if it still points at track.
func (s *Store) ReleaseDirectory(ctx context.Context, studentID, track string) error {
	_, err := s.dir.DeleteOne(ctx, bson.M{"student_id": studentID, "track": track})
	return err
}

// Each streams every profile in (track, student_id) order.
func (s *Store) Each(ctx context.Context, fn func(models.Profile) error) error {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "track", Value: 1}, {Key: "student_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var p models.Profile
		if err := cur.Decode(&p); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Count returns the number of onboarded students, in track when non-empty.
func (s *Store) Count(ctx context.Context, track string) (int64, error) {
	filter := bson.M{}
	if track != "" {
		filter["track"] = track
	}
	return s.c.CountDocuments(ctx, filter)
}
