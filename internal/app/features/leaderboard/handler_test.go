package leaderboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/leaderboard"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	lbsvc "github.com/dalemusser/internhub/internal/app/services/leaderboard"
	"github.com/dalemusser/internhub/internal/app/services/profiles"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.uber.org/zap"
)

const track = "Data Analysis"

type env struct {
	h        *leaderboard.Handler
	lb       *lbsvc.Service
	profiles *testutil.FakeProfiles
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	e := &env{profiles: testutil.NewFakeProfiles()}
	e.lb = lbsvc.New(lbsvc.Deps{
		Entries:     testutil.NewFakeLeaderboard(),
		Stats:       testutil.NewFakeTrackStats(),
		Submissions: testutil.NewFakeSubmissions(),
	})
	psvc := profiles.New(e.profiles, trackcatalog.Default(), logger)
	e.h = leaderboard.NewHandler(e.lb, psvc, uierrors.NewErrorLogger(logger), logger)
	return e
}

// seed records one response per latency for each student.
func (e *env) seed(t *testing.T, latencies map[string][]int64) {
	t.Helper()
	for id, ls := range latencies {
		p := testutil.NewProfile(id, id, track)
		e.profiles.Seed(p)
		for _, l := range ls {
			if _, err := e.lb.RecordResponse(context.Background(), track, id, l, p.Fields(), time.Now()); err != nil {
				t.Fatalf("record %s: %v", id, err)
			}
		}
	}
}

type topBody struct {
	Track   string                    `json:"track"`
	Entries []models.LeaderboardEntry `json:"entries"`
	Next    string                    `json:"next"`
}

func getTop(t *testing.T, h *leaderboard.Handler, target string, u testutil.TestUser) (*testutil.ResponseRecorder, topBody) {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeTop(rec, testutil.NewAuthenticatedRequest("GET", target, u))
	var b topBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec, b
}

func ids(entries []models.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.StudentID
	}
	return out
}

func TestServeTop_OrderAndPaging(t *testing.T) {
	e := newEnv(t)
	// A: avg 60 over 1; B: avg 30 over 1; C: avg 30 over 2.
	e.seed(t, map[string][]int64{"A": {60}, "B": {30}, "C": {20, 40}})

	_, b := getTop(t, e.h, "/leaderboard?track=Data+Analysis&n=2", testutil.StaffUser())
	if got := ids(b.Entries); len(got) != 2 || got[0] != "C" || got[1] != "B" {
		t.Fatalf("first page: got %v, want [C B]", got)
	}
	if b.Next == "" {
		t.Fatal("expected a next cursor")
	}

	_, b = getTop(t, e.h, "/leaderboard?track=Data+Analysis&n=2&after="+b.Next, testutil.StaffUser())
	if got := ids(b.Entries); len(got) != 1 || got[0] != "A" || b.Next != "" {
		t.Errorf("second page: got %v next=%q, want [A] and no cursor", got, b.Next)
	}
}

func TestServeTop_TrackDefaults(t *testing.T) {
	e := newEnv(t)
	e.seed(t, map[string][]int64{"g-asha": {90}})

	_, b := getTop(t, e.h, "/leaderboard", testutil.StudentUser("g-asha"))
	if b.Track != track || len(b.Entries) != 1 {
		t.Errorf("student default: got %+v", b)
	}

	rec, _ := getTop(t, e.h, "/leaderboard", testutil.StaffUser())
	rec.AssertStatus(t, http.StatusBadRequest)

	rec, _ = getTop(t, e.h, "/leaderboard", testutil.StudentUser("g-new"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, `"profile_not_found"`)

	rec, _ = getTop(t, e.h, "/leaderboard?track=Pottery", testutil.StaffUser())
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeTop_EmptyTrack(t *testing.T) {
	e := newEnv(t)

	rec, b := getTop(t, e.h, "/leaderboard?track=Data+Analysis", testutil.StaffUser())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"entries":[]`)
	if len(b.Entries) != 0 {
		t.Errorf("entries: got %d", len(b.Entries))
	}
}

func TestServeMine(t *testing.T) {
	e := newEnv(t)
	e.seed(t, map[string][]int64{"A": {60}, "B": {30}, "C": {20, 40}})
	p := testutil.NewProfile("A", "A", track)

	rec := testutil.NewRecorder()
	e.h.ServeMine(rec, profile.WithProfile(testutil.NewAuthenticatedRequest("GET", "/leaderboard/me", testutil.StudentUser("A")), p))
	rec.AssertStatus(t, http.StatusOK)

	var r models.Rank
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Rank != 3 || r.Total != 3 {
		t.Errorf("rank: got %+v, want 3 of 3", r)
	}

	rec = testutil.NewRecorder()
	newcomer := testutil.NewProfile("D", "D", track)
	e.h.ServeMine(rec, profile.WithProfile(testutil.NewAuthenticatedRequest("GET", "/leaderboard/me", testutil.StudentUser("D")), newcomer))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeStats(t *testing.T) {
	e := newEnv(t)
	e.seed(t, map[string][]int64{"A": {10}, "B": {21}})

	rec := testutil.NewRecorder()
	e.h.ServeStats(rec, testutil.NewAuthenticatedRequest("GET", "/leaderboard/stats?track=Data+Analysis", testutil.StaffUser()))
	rec.AssertStatus(t, http.StatusOK)

	var st models.TrackStats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.StudentCount != 2 || st.TotalSubmissions != 2 || st.AverageSeconds != 16 {
		t.Errorf("stats: got %+v", st)
	}
}
