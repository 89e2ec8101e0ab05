package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/services/submissions"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// NewProfile returns an unsaved profile in track.
func NewProfile(studentID, name, track string) models.Profile {
	return models.Profile{
		ID:          primitive.NewObjectID(),
		StudentID:   studentID,
		Name:        name,
		NameCI:      text.Fold(name),
		Institution: "Test University",
		Track:       track,
		Email:       studentID + "@example.com",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

// NewAssignment returns an unsaved assignment in track created at createdAt.
func NewAssignment(track, title string, createdAt time.Time) models.Assignment {
	return models.Assignment{
		ID:        primitive.NewObjectID(),
		Track:     track,
		Title:     title,
		Kind:      models.KindClasswork,
		CreatedBy: "staff-1",
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

// CreateProfile inserts a profile and its directory entry.
func (f *Fixtures) CreateProfile(ctx context.Context, studentID, name, track string) models.Profile {
	f.t.Helper()

	p := NewProfile(studentID, name, track)
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	dir := models.DirectoryEntry{StudentID: studentID, Track: track, UpdatedAt: p.CreatedAt}
	if _, err := f.db.Collection("profile_directory").InsertOne(ctx, dir); err != nil {
		f.t.Fatalf("failed to create test directory entry: %v", err)
	}
	return p
}

// CreateAssignment inserts an assignment created at createdAt.
func (f *Fixtures) CreateAssignment(ctx context.Context, track, title string, createdAt time.Time) models.Assignment {
	f.t.Helper()

	a := NewAssignment(track, title, createdAt)
	if _, err := f.db.Collection("assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test assignment: %v", err)
	}
	return a
}

// CreateSubmission inserts a submission by p for a, stamped at submittedAt.
// The bucket follows the location key layout.
func (f *Fixtures) CreateSubmission(ctx context.Context, p models.Profile, a models.Assignment, submittedAt time.Time) models.Submission {
	f.t.Helper()

	sub := models.Submission{
		ID:                  primitive.NewObjectID(),
		Bucket:              BucketOf(a),
		Track:               a.Track,
		StudentID:           p.StudentID,
		StudentName:         p.Name,
		StudentEmail:        p.Email,
		Institution:         p.Institution,
		AssignmentID:        a.ID,
		AssignmentCreatedAt: a.CreatedAt,
		Title:               a.Title,
		Kind:                a.Kind,
		FileURL:             "https://files.example.com/" + p.StudentID + ".pdf",
		Status:              models.SubmissionStatusSubmitted,
		CreatedAt:           submittedAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := f.db.Collection("submissions").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test submission: %v", err)
	}
	return sub
}

// BucketOf returns the location key of a.
func BucketOf(a models.Assignment) string {
	return submissions.LocationKey(a.Track, a.ID, a.CreatedAt)
}
