// Package submissions records student submissions: one per student per
// assignment instance, indexed per student and folded into the leaderboard.
package submissions

import (
	"context"
	"errors"
	"strings"
	"time"

	astore "github.com/dalemusser/internhub/internal/app/store/assignments"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/internhub/internal/app/system/metrics"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxDescriptionLen bounds the optional note attached to a submission.
const MaxDescriptionLen = 2000

// AssignmentStore loads assignments (store/assignments).
type AssignmentStore interface {
	Get(ctx context.Context, track string, id primitive.ObjectID) (models.Assignment, error)
}

// SubmissionStore persists submissions (store/submissions).
type SubmissionStore interface {
	Insert(ctx context.Context, sub models.Submission) (models.Submission, error)
	Find(ctx context.Context, bucket, studentID string) (models.Submission, error)
	ListByStudent(ctx context.Context, track, studentID string) ([]models.Submission, error)
}

// IndexStore is the per-student set of location keys (store/submissionindex).
type IndexStore interface {
	Append(ctx context.Context, track, studentID, key string) error
}

// Aggregator receives each recorded response (services/leaderboard).
type Aggregator interface {
	RecordResponse(ctx context.Context, track, studentID string, latency int64, f models.StudentFields, at time.Time) (models.LeaderboardEntry, error)
}

type Deps struct {
	Assignments AssignmentStore
	Submissions SubmissionStore
	Index       IndexStore
	Leaderboard Aggregator
	Log         *zap.Logger
	Now         func() time.Time
}

type Service struct {
	assignments AssignmentStore
	subs        SubmissionStore
	index       IndexStore
	lb          Aggregator
	log         *zap.Logger
	now         func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		assignments: d.Assignments,
		subs:        d.Submissions,
		index:       d.Index,
		lb:          d.Leaderboard,
		log:         d.Log,
		now:         d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// LocationKey identifies one assignment instance: track slug, assignment id
// and the UTC day the assignment was created. Every student's submission
// for that instance shares the key.
func LocationKey(track string, assignmentID primitive.ObjectID, assignmentCreatedAt time.Time) string {
	return trackcatalog.Slug(track) + "_" + assignmentID.Hex() + "_" + assignmentCreatedAt.UTC().Format("2006-01-02")
}

// ClampLatency is the response latency in whole seconds, clamped to [1, 86400].
func ClampLatency(submittedAt, assignmentCreatedAt time.Time) int64 {
	return models.ResponseLatency(submittedAt, assignmentCreatedAt)
}

// Plan is the outcome of Prepare: the assignment being answered and the
// location key the submission will occupy.
type Plan struct {
	Assignment models.Assignment
	Bucket     string
}

// Prepare checks a submission attempt before the file is uploaded. The
// duplicate check here is advisory; Record is authoritative.
func (s *Service) Prepare(ctx context.Context, p models.Profile, assignmentIDHex string) (Plan, error) {
	const op = "submissions.Prepare"
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(assignmentIDHex))
	if err != nil {
		return Plan{}, apperr.Validation(op, map[string]string{"assignment_id": "assignment id is missing or malformed"})
	}
	a, err := s.loadOpen(ctx, op, p.Track, id)
	if err != nil {
		return Plan{}, err
	}

	bucket := LocationKey(a.Track, a.ID, a.CreatedAt)
	_, err = s.subs.Find(ctx, bucket, p.StudentID)
	switch {
	case err == nil:
		return Plan{}, apperr.New(apperr.KindAlreadySubmitted, op, "you have already submitted this assignment")
	case errors.Is(err, sstore.ErrNotFound):
		return Plan{Assignment: a, Bucket: bucket}, nil
	default:
		return Plan{}, apperr.Unavailable(op, err)
	}
}

func (s *Service) loadOpen(ctx context.Context, op, track string, id primitive.ObjectID) (models.Assignment, error) {
	a, err := s.assignments.Get(ctx, track, id)
	if errors.Is(err, astore.ErrNotFound) {
		return models.Assignment{}, apperr.New(apperr.KindAssignmentNotFound, op, "assignment not found for your track")
	}
	if err != nil {
		return models.Assignment{}, apperr.Unavailable(op, err)
	}
	if !a.OpenAt(s.now()) {
		return models.Assignment{}, apperr.Validation(op, map[string]string{"assignment_id": "the deadline for this assignment has passed"})
	}
	return a, nil
}

// Candidate is a submission ready to be recorded: the file is already
// stored at FileURL.
type Candidate struct {
	Profile             models.Profile
	AssignmentID        primitive.ObjectID
	AssignmentCreatedAt time.Time
	Description         string
	FileURL             string
	FileName            string
}

func (c Candidate) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(c.Profile.StudentID) == "" {
		fields["student_id"] = "student id is required"
	}
	if strings.TrimSpace(c.Profile.Track) == "" {
		fields["track"] = "track is required"
	}
	if c.AssignmentID.IsZero() {
		fields["assignment_id"] = "assignment id is required"
	}
	if c.AssignmentCreatedAt.IsZero() {
		fields["assignment_created_at"] = "assignment creation time is required"
	}
	if strings.TrimSpace(c.FileURL) == "" {
		fields["file"] = "a file is required"
	}
	if len(c.Description) > MaxDescriptionLen {
		fields["description"] = "description is too long"
	}
	return fields
}

// Record stores the submission exactly once per (location key, student),
// appends the key to the student's index and records the response latency
// on the leaderboard. Only the first step is authoritative: index and
// leaderboard failures are logged and counted, and the scheduled rebuild
// reconciles them.
func (s *Service) Record(ctx context.Context, c Candidate) (models.Submission, error) {
	const op = "submissions.Record"
	track := c.Profile.Track

	if fields := c.validate(); len(fields) > 0 {
		metrics.SubmissionsTotal.WithLabelValues(track, "", metrics.OutcomeRejected).Inc()
		return models.Submission{}, apperr.Validation(op, fields)
	}

	a, err := s.loadOpen(ctx, op, track, c.AssignmentID)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(track, "", metrics.OutcomeRejected).Inc()
		return models.Submission{}, err
	}
	if !sameUTCDay(a.CreatedAt, c.AssignmentCreatedAt) {
		metrics.SubmissionsTotal.WithLabelValues(track, a.Kind, metrics.OutcomeRejected).Inc()
		return models.Submission{}, apperr.New(apperr.KindAssignmentNotFound, op, "assignment has changed, reload and try again")
	}

	bucket := LocationKey(a.Track, a.ID, a.CreatedAt)
	sub, err := s.subs.Insert(ctx, models.Submission{
		Bucket:              bucket,
		Track:               a.Track,
		StudentID:           c.Profile.StudentID,
		StudentName:         c.Profile.Name,
		StudentEmail:        c.Profile.Email,
		Institution:         c.Profile.Institution,
		AssignmentID:        a.ID,
		AssignmentCreatedAt: a.CreatedAt,
		Title:               a.Title,
		Kind:                a.Kind,
		Description:         htmlsanitize.Plain(c.Description),
		FileURL:             strings.TrimSpace(c.FileURL),
		FileName:            c.FileName,
		Status:              models.SubmissionStatusSubmitted,
		CreatedAt:           s.now().UTC().Truncate(time.Millisecond),
	})
	if errors.Is(err, sstore.ErrDuplicate) {
		metrics.SubmissionsTotal.WithLabelValues(track, a.Kind, metrics.OutcomeAlreadySubmitted).Inc()
		return models.Submission{}, apperr.New(apperr.KindAlreadySubmitted, op, "you have already submitted this assignment")
	}
	if err != nil {
		return models.Submission{}, apperr.Unavailable(op, err)
	}
	metrics.SubmissionsTotal.WithLabelValues(track, a.Kind, metrics.OutcomeRecorded).Inc()

	if err := s.index.Append(ctx, sub.Track, sub.StudentID, bucket); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(track, a.Kind, metrics.OutcomeIndexFailed).Inc()
		s.log.Error("submission index append failed",
			zap.String("bucket", bucket), zap.String("student_id", sub.StudentID), zap.Error(err))
	}

	latency := ClampLatency(sub.CreatedAt, a.CreatedAt)
	metrics.ResponseLatency.WithLabelValues(track).Observe(float64(latency))
	if _, err := s.lb.RecordResponse(ctx, sub.Track, sub.StudentID, latency, c.Profile.Fields(), sub.CreatedAt); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(track, a.Kind, metrics.OutcomeLeaderboardFail).Inc()
		s.log.Error("leaderboard update failed",
			zap.String("bucket", bucket), zap.String("student_id", sub.StudentID), zap.Int64("latency", latency), zap.Error(err))
	}

	s.log.Info("submission recorded",
		zap.String("bucket", bucket),
		zap.String("student_id", sub.StudentID),
		zap.Int64("latency", latency))
	return sub, nil
}

// History lists the student's submissions, newest first.
func (s *Service) History(ctx context.Context, p models.Profile) ([]models.Submission, error) {
	out, err := s.subs.ListByStudent(ctx, p.Track, p.StudentID)
	if err != nil {
		return nil, apperr.Unavailable("submissions.History", err)
	}
	return out, nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
