// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup (EnsureSchema). Every ensure* is idempotent;
problems are aggregated so one bad collection does not hide another.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, step := range []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"profiles", ensureProfiles},
		{"profile_directory", ensureProfileDirectory},
		{"assignments", ensureAssignments},
		{"submissions", ensureSubmissions},
		{"submission_index", ensureSubmissionIndex},
		{"leaderboard_entries", ensureLeaderboard},
		{"track_stats", ensureTrackStats},
		{"oauth_states", ensureOAuthStates},
		{"audit_events", ensureAuditEvents},
	} {
		if err := step.fn(ctx, db); err != nil {
			problems = append(problems, step.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func unique(name string) *options.IndexOptions {
	return options.Index().SetUnique(true).SetName(name)
}

func named(name string) *options.IndexOptions {
	return options.Index().SetName(name)
}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("profiles"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "student_id", Value: 1}}, Options: unique("uniq_profile_track_student")},
		{Keys: bson.D{{Key: "student_id", Value: 1}}, Options: named("idx_profile_student")},
	})
}

func ensureProfileDirectory(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("profile_directory"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}}, Options: unique("uniq_directory_student")},
	})
}

func ensureAssignments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("assignments"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: named("idx_assignment_track_created")},
	})
}

func ensureSubmissions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("submissions"), []mongo.IndexModel{
		// create-if-absent guard: one submission per student per assignment instance
		{Keys: bson.D{{Key: "bucket", Value: 1}, {Key: "student_id", Value: 1}}, Options: unique("uniq_submission_bucket_student")},
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: named("idx_submission_track_student_created")},
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, Options: named("idx_submission_track_created")},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: named("idx_submission_created")},
	})
}

func ensureSubmissionIndex(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("submission_index"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "student_id", Value: 1}}, Options: unique("uniq_subindex_track_student")},
	})
}

func ensureLeaderboard(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("leaderboard_entries"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "track", Value: 1}, {Key: "student_id", Value: 1}}, Options: unique("uniq_leaderboard_track_student")},
		{Keys: bson.D{
			{Key: "track", Value: 1},
			{Key: "average_seconds", Value: 1},
			{Key: "count", Value: -1},
			{Key: "student_id", Value: 1},
		}, Options: named("idx_leaderboard_rank")},
	})
}

func ensureTrackStats(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("track_stats"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "track", Value: 1}}, Options: unique("uniq_track_stats_track")},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_states"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}}, Options: unique("uniq_oauth_state")},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_expires")},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: named("idx_audit_timestamp")},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}, Options: named("idx_audit_category_type")},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}, Options: named("idx_audit_actor")},
	})
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

// isDuplicateKeyErr reports E11000, which here means a unique index cannot be
// built because the collection already holds duplicates.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return strings.Contains(err.Error(), "E11000")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet makes the collection carry each desired index. An existing
// index with the same keys is reused when its uniqueness and name match;
// otherwise it is dropped and recreated with the desired options.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A missing collection lists as empty on most servers; anything else is real.
		zap.L().Warn("list indexes failed; creating blindly",
			zap.String("collection", coll.Name()),
			zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var wantUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			wantUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(wantUnique)))

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == boolVal(wantUnique) && (name == "" || ex.Name == name) {
				log.Debug("reusing existing index")
				continue
			}
			log.Info("replacing index with differing options", zap.String("existing", ex.Name))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolVal(wantUnique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
				continue
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
