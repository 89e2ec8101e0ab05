package metricsstore

import (
	"context"

	profilestore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the staff summary.
type Counts struct {
	Students       int64 `json:"students"`
	Assignments    int64 `json:"assignments"`
	Submissions    int64 `json:"submissions"`
	RankedStudents int64 `json:"ranked_students"`
}

// FetchCounts returns the summary totals, scoped to track when non-empty.
// Tolerant: a failed count reports 0 for that counter.
func FetchCounts(ctx context.Context, db *mongo.Database, track string) Counts {
	var out Counts

	filter := func() bson.M {
		if track == "" {
			return bson.M{}
		}
		return bson.M{"track": track}
	}

	if n, err := profilestore.New(db).Count(ctx, track); err == nil {
		out.Students = n
	}
	if n, err := db.Collection("assignments").CountDocuments(ctx, filter()); err == nil {
		out.Assignments = n
	}
	if n, err := db.Collection("submissions").CountDocuments(ctx, filter()); err == nil {
		out.Submissions = n
	}

	ranked := filter()
	ranked["count"] = bson.M{"$gte": 1}
	if n, err := db.Collection("leaderboard_entries").CountDocuments(ctx, ranked); err == nil {
		out.RankedStudents = n
	}

	return out
}
