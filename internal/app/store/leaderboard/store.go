// internal/app/store/leaderboard/store.go
package leaderboard

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("leaderboard entry not found")

// Store persists one LeaderboardEntry per (track, student_id).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("leaderboard_entries")}
}

// Ranking order: lower average first, then more submissions, then student id.
var rankSort = bson.D{
	{Key: "average_seconds", Value: 1},
	{Key: "count", Value: -1},
	{Key: "student_id", Value: 1},
}

// Record folds one response latency into the student's entry in a single
// atomic upsert. A missing entry starts at count=1, cumulative=latency.
// average_seconds is cumulative/count rounded half up.
func (s *Store) Record(ctx context.Context, track, studentID string, latency int64, f models.StudentFields, at time.Time) (models.LeaderboardEntry, error) {
	now := time.Now().UTC()
	at = at.UTC()

	// Profile fields follow the newest sample, so an older sample replayed
	// late leaves them alone. Field refs inside one $set read the pre-update
	// document.
	newest := bson.M{"$gte": bson.A{at, bson.M{"$ifNull": bson.A{"$last_submission_at", at}}}}
	latest := func(field, val string) bson.M {
		// $literal keeps user-supplied strings from being read as field paths.
		return bson.M{"$cond": bson.A{newest, bson.M{"$literal": val}, "$" + field}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"count":              bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$count", int64(0)}}, int64(1)}},
			"cumulative_seconds": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$cumulative_seconds", int64(0)}}, latency}},
			"name":               latest("name", f.Name),
			"email":              latest("email", f.Email),
			"institution":        latest("institution", f.Institution),
			"last_submission_at": bson.M{"$max": bson.A{"$last_submission_at", at}},
			"created_at":         bson.M{"$ifNull": bson.A{"$created_at", now}},
			"updated_at":         now,
		}}},
		{{Key: "$set", Value: bson.M{
			"average_seconds": bson.M{"$toLong": bson.M{"$floor": bson.M{"$add": bson.A{
				bson.M{"$divide": bson.A{"$cumulative_seconds", "$count"}},
				0.5,
			}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var e models.LeaderboardEntry
	err := s.c.FindOneAndUpdate(ctx, bson.M{"track": track, "student_id": studentID}, pipeline, opts).Decode(&e)
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	return e, nil
}

// Get returns the entry for (track, studentID).
func (s *Store) Get(ctx context.Context, track, studentID string) (models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	err := s.c.FindOne(ctx, bson.M{"track": track, "student_id": studentID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.LeaderboardEntry{}, ErrNotFound
	}
	return e, err
}

// Position is a point in the ranking order used as a "load more" cursor.
type Position struct {
	AverageSeconds int64
	Count          int64
	StudentID      string
}

// PositionOf returns the ranking position of e.
func PositionOf(e models.LeaderboardEntry) Position {
	return Position{AverageSeconds: e.AverageSeconds, Count: e.Count, StudentID: e.StudentID}
}

// Top returns up to limit entries of track in ranking order, starting
// strictly after the given position when non-nil.
func (s *Store) Top(ctx context.Context, track string, limit int64, after *Position) ([]models.LeaderboardEntry, error) {
	filter := bson.M{"track": track}
	if after != nil {
		filter["$or"] = bson.A{
			bson.M{"average_seconds": bson.M{"$gt": after.AverageSeconds}},
			bson.M{"average_seconds": after.AverageSeconds, "count": bson.M{"$lt": after.Count}},
			bson.M{"average_seconds": after.AverageSeconds, "count": after.Count, "student_id": bson.M{"$gt": after.StudentID}},
		}
	}
	opts := options.Find().SetSort(rankSort)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.LeaderboardEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rank computes the student's 1-based rank: one plus the peers with a lower
// average, plus the peers tied on average with more submissions.
func (s *Store) Rank(ctx context.Context, track, studentID string) (models.Rank, error) {
	me, err := s.Get(ctx, track, studentID)
	if err != nil {
		return models.Rank{}, err
	}
	better, err := s.c.CountDocuments(ctx, bson.M{
		"track": track,
		"$or": bson.A{
			bson.M{"average_seconds": bson.M{"$lt": me.AverageSeconds}},
			bson.M{"average_seconds": me.AverageSeconds, "count": bson.M{"$gt": me.Count}},
		},
	})
	if err != nil {
		return models.Rank{}, err
	}
	total, err := s.c.CountDocuments(ctx, bson.M{"track": track, "count": bson.M{"$gte": 1}})
	if err != nil {
		return models.Rank{}, err
	}
	return models.Rank{Track: track, StudentID: studentID, Rank: better + 1, Total: total}, nil
}

// ComputeStats scans the track's entries and returns the rollup.
func (s *Store) ComputeStats(ctx context.Context, track string) (models.TrackStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"track": track}}},
		{{Key: "$group", Value: bson.M{
			"_id":      nil,
			"students": bson.M{"$sum": 1},
			"total":    bson.M{"$sum": "$count"},
			"avg":      bson.M{"$avg": "$average_seconds"},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.TrackStats{}, err
	}
	defer cur.Close(ctx)

	out := models.TrackStats{Track: track, UpdatedAt: time.Now().UTC()}
	if cur.Next(ctx) {
		var row struct {
			Students int64   `bson:"students"`
			Total    int64   `bson:"total"`
			Avg      float64 `bson:"avg"`
		}
		if err := cur.Decode(&row); err != nil {
			return models.TrackStats{}, err
		}
		out.StudentCount = row.Students
		out.TotalSubmissions = row.Total
		out.AverageSeconds = int64(math.Floor(row.Avg + 0.5))
	}
	return out, cur.Err()
}

// ReplaceTrack swaps every entry of track for entries. Callers wanting
// atomicity run it inside a transaction.
func (s *Store) ReplaceTrack(ctx context.Context, track string, entries []models.LeaderboardEntry) error {
	if _, err := s.c.DeleteMany(ctx, bson.M{"track": track}); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		e.ID = primitive.NewObjectID()
		e.Track = track
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		docs = append(docs, e)
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}
