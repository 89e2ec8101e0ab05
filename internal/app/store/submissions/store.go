// internal/app/store/submissions/store.go
package submissions

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("submission not found")
	// ErrDuplicate is returned by Insert when (bucket, student_id) already exists.
	ErrDuplicate = errors.New("submission already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions")}
}

// Insert writes s if no submission exists at (s.Bucket, s.StudentID).
// The unique index on those fields makes this a single create-if-absent.
func (s *Store) Insert(ctx context.Context, sub models.Submission) (models.Submission, error) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Submission{}, ErrDuplicate
		}
		return models.Submission{}, err
	}
	return sub, nil
}

// Find loads the submission stored at (bucket, studentID).
func (s *Store) Find(ctx context.Context, bucket, studentID string) (models.Submission, error) {
	var sub models.Submission
	err := s.c.FindOne(ctx, bson.M{"bucket": bucket, "student_id": studentID}).Decode(&sub)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Submission{}, ErrNotFound
	}
	return sub, err
}

// ListByStudent returns a student's submissions in track, newest first.
func (s *Store) ListByStudent(ctx context.Context, track, studentID string) ([]models.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"track": track, "student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Submission{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EachByTrack streams every submission in track, oldest first.
func (s *Store) EachByTrack(ctx context.Context, track string, fn func(models.Submission) error) error {
	return s.each(ctx, bson.M{"track": track}, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, fn)
}

// Filter narrows admin listings. Empty fields match everything.
type Filter struct {
	Track  string
	Kind   string
	Search string // case-insensitive substring of student name, email or title
	After  *paging.TimeCursor
	Limit  int64
}

func (f Filter) query() bson.M {
	q := bson.M{}
	var and bson.A
	if f.Track != "" {
		q["track"] = f.Track
	}
	if f.Kind != "" {
		q["kind"] = f.Kind
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"student_name": re},
			bson.M{"student_email": re},
			bson.M{"title": re},
		}})
	}
	if f.After != nil {
		and = append(and, f.After.AfterDesc("created_at"))
	}
	if len(and) > 0 {
		q["$and"] = and
	}
	return q
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// List returns one page of submissions matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Submission, error) {
	opts := options.Find().SetSort(newestFirst)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Submission{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Each streams every submission matching f (Limit and After are ignored), newest first.
func (s *Store) Each(ctx context.Context, f Filter, fn func(models.Submission) error) error {
	f.After = nil
	return s.each(ctx, f.query(), newestFirst, fn)
}

func (s *Store) each(ctx context.Context, filter bson.M, sort bson.D, fn func(models.Submission) error) error {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var sub models.Submission
		if err := cur.Decode(&sub); err != nil {
			return err
		}
		if err := fn(sub); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Summary is the admin dashboard rollup.
type Summary struct {
	Total     int64 `json:"total_submissions"`
	Classwork int64 `json:"classwork_count"`
	Homework  int64 `json:"homework_count"`
	Recent    int64 `json:"recent_submissions"`
}

// Summarize counts submissions by kind and those created at or after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": "$kind",
			"n":   bson.M{"$sum": 1},
			"recent": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$gte": bson.A{"$created_at", since}}, 1, 0},
			}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Kind   string `bson:"_id"`
		N      int64  `bson:"n"`
		Recent int64  `bson:"recent"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return Summary{}, err
	}
	var out Summary
	for _, r := range rows {
		out.Total += r.N
		out.Recent += r.Recent
		switch r.Kind {
		case models.KindClasswork:
			out.Classwork = r.N
		case models.KindHomework:
			out.Homework = r.N
		}
	}
	return out, nil
}

// StudentGroup summarises one student's submissions.
type StudentGroup struct {
	StudentID    string    `bson:"_id" json:"student_id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Institution  string    `bson:"institution" json:"institution"`
	Track        string    `bson:"track" json:"track"`
	Count        int64     `bson:"count" json:"count"`
	LastSubmitAt time.Time `bson:"last_submit_at" json:"last_submit_at"`
}

// GroupByStudent returns per-student counts for track (all tracks when empty),
// most recent activity first.
func (s *Store) GroupByStudent(ctx context.Context, track string) ([]StudentGroup, error) {
	match := bson.M{}
	if track != "" {
		match["track"] = track
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$student_id",
			"name":           bson.M{"$first": "$student_name"},
			"email":          bson.M{"$first": "$student_email"},
			"institution":    bson.M{"$first": "$institution"},
			"track":          bson.M{"$first": "$track"},
			"count":          bson.M{"$sum": 1},
			"last_submit_at": bson.M{"$first": "$created_at"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_submit_at", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []StudentGroup{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
