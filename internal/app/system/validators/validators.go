// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the portal's collections (if missing) and attaches
// JSON-Schema validators. Servers without collMod validator support are
// logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("profiles", profilesSchema())
	ensure("assignments", assignmentsSchema())
	ensure("submissions", submissionsSchema())
	ensure("leaderboard_entries", leaderboardSchema())

	ensure("profile_directory", nil)
	ensure("submission_index", nil)
	ensure("track_stats", nil)
	ensure("oauth_states", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	names, listErr := db.ListCollectionNames(ctx, bson.M{"name": name})
	if listErr == nil && len(names) > 0 {
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Debug("validator ensured", zap.String("collection", name))
	return nil
}

func commandErr(err error, code int32, needles ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------------ schemas ------------------------------ */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enum(vals []string) bson.M {
	a := bson.A{}
	for _, v := range vals {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

func profilesSchema() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"student_id", "name", "institution", "track", "email", "created_at"},
		"properties": bson.M{
			"student_id":  nonBlank,
			"name":        nonBlank,
			"institution": nonBlank,
			"track":       nonBlank,
			"email":       nonBlank,
			"created_at":  bson.M{"bsonType": "date"},
		},
	}}
}

func assignmentsSchema() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"track", "title", "kind", "created_at"},
		"properties": bson.M{
			"track":      nonBlank,
			"title":      nonBlank,
			"kind":       enum(models.AssignmentKinds),
			"deadline":   bson.M{"bsonType": bson.A{"date", "null"}},
			"created_at": bson.M{"bsonType": "date"},
		},
	}}
}

func submissionsSchema() bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"bucket", "track", "student_id", "assignment_id", "assignment_created_at", "file_url", "status", "created_at"},
		"properties": bson.M{
			"bucket":                nonBlank,
			"track":                 nonBlank,
			"student_id":            nonBlank,
			"assignment_id":         bson.M{"bsonType": "objectId"},
			"assignment_created_at": bson.M{"bsonType": "date"},
			"kind":                  enum(models.AssignmentKinds),
			"file_url":              nonBlank,
			"status":                enum([]string{models.SubmissionStatusSubmitted}),
			"created_at":            bson.M{"bsonType": "date"},
		},
	}}
}

func leaderboardSchema() bson.M {
	counter := bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0}
	return bson.M{"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": bson.A{"track", "student_id", "count", "cumulative_seconds", "average_seconds"},
		"properties": bson.M{
			"track":              nonBlank,
			"student_id":         nonBlank,
			"count":              bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
			"cumulative_seconds": counter,
			"average_seconds":    counter,
		},
	}}
}
