// internal/app/store/trackstats/store.go
package trackstats

import (
	"context"
	"errors"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("track stats not found")

// Store holds the persisted rollup, one document per track.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("track_stats")}
}

// Save replaces the rollup for st.Track.
func (s *Store) Save(ctx context.Context, st models.TrackStats) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"track": st.Track}, st, options.Replace().SetUpsert(true))
	return err
}

// Get returns the last saved rollup for track.
func (s *Store) Get(ctx context.Context, track string) (models.TrackStats, error) {
	var st models.TrackStats
	err := s.c.FindOne(ctx, bson.M{"track": track}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TrackStats{}, ErrNotFound
	}
	return st, err
}
