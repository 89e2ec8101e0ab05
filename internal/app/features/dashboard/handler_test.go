package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	metricsstore "github.com/dalemusser/internhub/internal/app/store/metrics"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func newTestHandler(subs *testutil.FakeSubmissions) (*dashboard.Handler, *string) {
	var seenTrack string
	logger := zap.NewNop()
	h := dashboard.NewHandler(nil, subs, uierrors.NewErrorLogger(logger), logger)
	h.Now = func() time.Time { return now }
	h.Counts = func(_ context.Context, track string) metricsstore.Counts {
		seenTrack = track
		return metricsstore.Counts{Students: 2, Assignments: 3, Submissions: 3, RankedStudents: 2}
	}
	return h, &seenTrack
}

func insert(t *testing.T, subs *testutil.FakeSubmissions, student, track, kind string, at time.Time) {
	t.Helper()
	_, err := subs.Insert(context.Background(), models.Submission{
		Bucket:      primitive.NewObjectID().Hex(),
		Track:       track,
		StudentID:   student,
		StudentName: student,
		Kind:        kind,
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestServeSummary(t *testing.T) {
	subs := testutil.NewFakeSubmissions()
	insert(t, subs, "asha", "Data Analysis", models.KindClasswork, now.Add(-30*24*time.Hour))
	insert(t, subs, "asha", "Data Analysis", models.KindHomework, now.Add(-time.Hour))
	insert(t, subs, "ben", "Web Development", models.KindClasswork, now.Add(-2*time.Hour))
	h, seenTrack := newTestHandler(subs)

	rec := testutil.NewRecorder()
	h.ServeSummary(rec, testutil.NewAuthenticatedRequest("GET", "/admin/summary", testutil.StaffUser()))
	rec.AssertStatus(t, http.StatusOK)

	var b struct {
		Total     int64 `json:"total_submissions"`
		Classwork int64 `json:"classwork_count"`
		Homework  int64 `json:"homework_count"`
		Recent    int64 `json:"recent_submissions"`
		Counts    struct {
			Students int64 `json:"students"`
		} `json:"counts"`
		Students []struct {
			StudentID string `json:"student_id"`
			Count     int64  `json:"count"`
		} `json:"students"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Total != 3 || b.Classwork != 2 || b.Homework != 1 || b.Recent != 2 {
		t.Errorf("totals: got %+v", b)
	}
	if b.Counts.Students != 2 {
		t.Errorf("counts: got %+v", b.Counts)
	}
	if len(b.Students) != 2 || b.Students[0].StudentID != "asha" || b.Students[0].Count != 2 {
		t.Errorf("groups: got %+v", b.Students)
	}

	rec = testutil.NewRecorder()
	h.ServeSummary(rec, testutil.NewAuthenticatedRequest("GET", "/admin/summary?track=Web+Development", testutil.StaffUser()))
	rec.AssertStatus(t, http.StatusOK)
	if *seenTrack != "Web Development" {
		t.Errorf("counts track: got %q", *seenTrack)
	}
	rec.AssertContains(t, `"student_id":"ben"`)
}

func TestServeSummary_StoreFailure(t *testing.T) {
	subs := testutil.NewFakeSubmissions()
	subs.FailOn("Summarize", errors.New("mongo down"))
	h, _ := newTestHandler(subs)

	rec := testutil.NewRecorder()
	h.ServeSummary(rec, testutil.NewAuthenticatedRequest("GET", "/admin/summary", testutil.StaffUser()))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, `"collaborator_unavailable"`)
}
