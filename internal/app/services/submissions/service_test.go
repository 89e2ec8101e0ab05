package submissions_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/services/leaderboard"
	"github.com/dalemusser/internhub/internal/app/services/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const track = "Data Analysis"

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type env struct {
	svc   *submissions.Service
	lb    *leaderboard.Service
	asg   *testutil.FakeAssignments
	subs  *testutil.FakeSubmissions
	index *testutil.FakeIndex
	lbs   *testutil.FakeLeaderboard
	now   time.Time
	mu    sync.Mutex
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		asg:   testutil.NewFakeAssignments(),
		subs:  testutil.NewFakeSubmissions(),
		index: testutil.NewFakeIndex(),
		lbs:   testutil.NewFakeLeaderboard(),
		now:   t0,
	}
	clock := func() time.Time {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.now
	}
	e.lb = leaderboard.New(leaderboard.Deps{
		Entries:     e.lbs,
		Stats:       testutil.NewFakeTrackStats(),
		Submissions: e.subs,
		Now:         clock,
	})
	e.svc = submissions.New(submissions.Deps{
		Assignments: e.asg,
		Submissions: e.subs,
		Index:       e.index,
		Leaderboard: e.lb,
		Now:         clock,
	})
	return e
}

func (e *env) setNow(t time.Time) {
	e.mu.Lock()
	e.now = t
	e.mu.Unlock()
}

func (e *env) assignment(t *testing.T, title string, createdAt time.Time) models.Assignment {
	t.Helper()
	a, err := e.asg.Create(context.Background(), testutil.NewAssignment(track, title, createdAt))
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return a
}

func candidate(p models.Profile, a models.Assignment) submissions.Candidate {
	return submissions.Candidate{
		Profile:             p,
		AssignmentID:        a.ID,
		AssignmentCreatedAt: a.CreatedAt,
		FileURL:             "https://files.example.com/" + p.StudentID + ".pdf",
		FileName:            "answer.pdf",
	}
}

func TestLocationKey(t *testing.T) {
	id, _ := primitive.ObjectIDFromHex("65f0c0ffee0000000000abcd")
	created := time.Date(2026, 3, 2, 23, 30, 0, 0, time.FixedZone("CET", 3600))

	got := submissions.LocationKey("Web Development", id, created)
	want := "Web_Development_65f0c0ffee0000000000abcd_2026-03-02"
	if got != want {
		t.Errorf("LocationKey: got %q, want %q", got, want)
	}

	other := submissions.LocationKey("Web Development", id, created.Add(24*time.Hour))
	if other == got {
		t.Errorf("LocationKey on a different day should differ, both %q", got)
	}
}

func TestClampLatency(t *testing.T) {
	tests := []struct {
		name  string
		after time.Duration
		want  int64
	}{
		{"two seconds", 2 * time.Second, 2},
		{"sub-second floors to minimum", 300 * time.Millisecond, 1},
		{"hundred hours capped", 100 * time.Hour, 86400},
		{"exactly one day", 24 * time.Hour, 86400},
		{"before creation", -5 * time.Minute, 1},
		{"ninety seconds", 90 * time.Second, 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := submissions.ClampLatency(t0.Add(tc.after), t0); got != tc.want {
				t.Errorf("ClampLatency: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRecord_HappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)

	e.setNow(t0.Add(90 * time.Second))
	sub, err := e.svc.Record(ctx, candidate(asha, a1))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if sub.FileURL == "" {
		t.Error("FileURL should be set")
	}
	if sub.Status != models.SubmissionStatusSubmitted {
		t.Errorf("Status: got %q, want %q", sub.Status, models.SubmissionStatusSubmitted)
	}
	if sub.Bucket != testutil.BucketOf(a1) {
		t.Errorf("Bucket: got %q, want %q", sub.Bucket, testutil.BucketOf(a1))
	}
	if n := len(e.subs.All()); n != 1 {
		t.Errorf("submissions stored: got %d, want 1", n)
	}

	entry, err := e.lbs.Get(ctx, track, "asha")
	if err != nil {
		t.Fatalf("leaderboard entry: %v", err)
	}
	if entry.Count != 1 || entry.AverageSeconds != 90 {
		t.Errorf("entry: got count=%d avg=%d, want 1/90", entry.Count, entry.AverageSeconds)
	}
	if entry.Name != "Asha" {
		t.Errorf("entry.Name: got %q, want %q", entry.Name, "Asha")
	}

	r, err := e.lb.RankOf(ctx, track, "asha")
	if err != nil {
		t.Fatalf("RankOf: %v", err)
	}
	if r.Rank != 1 {
		t.Errorf("RankOf: got %d, want 1", r.Rank)
	}

	idx, err := e.index.Get(ctx, track, "asha")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(idx.Keys) != 1 || idx.Keys[0] != sub.Bucket {
		t.Errorf("index keys: got %v, want [%s]", idx.Keys, sub.Bucket)
	}
}

func TestRecord_DuplicateBlocked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)

	e.setNow(t0.Add(90 * time.Second))
	if _, err := e.svc.Record(ctx, candidate(asha, a1)); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	before, _ := e.lbs.Get(ctx, track, "asha")

	e.setNow(t0.Add(10 * time.Minute))
	_, err := e.svc.Record(ctx, candidate(asha, a1))
	if !errors.Is(err, apperr.ErrAlreadySubmitted) {
		t.Fatalf("second Record: got %v, want already submitted", err)
	}
	if _, err := e.svc.Prepare(ctx, asha, a1.ID.Hex()); !errors.Is(err, apperr.ErrAlreadySubmitted) {
		t.Errorf("Prepare after submit: got %v, want already submitted", err)
	}

	if n := len(e.subs.All()); n != 1 {
		t.Errorf("submissions stored: got %d, want 1", n)
	}
	after, _ := e.lbs.Get(ctx, track, "asha")
	if after.Count != before.Count || after.CumulativeSeconds != before.CumulativeSeconds {
		t.Errorf("entry changed: before %+v, after %+v", before, after)
	}
}

// Both requests pass the advisory check, then race to record. Exactly one
// wins; the store's create-if-absent decides.
func TestRecord_ConcurrentAttemptsRecordOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)
	e.setNow(t0.Add(time.Minute))

	const attempts = 8
	for i := 0; i < attempts; i++ {
		if _, err := e.svc.Prepare(ctx, asha, a1.ID.Hex()); err != nil {
			t.Fatalf("Prepare %d: %v", i, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Record(ctx, candidate(asha, a1))
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrAlreadySubmitted):
			dup++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != attempts-1 {
		t.Errorf("outcomes: got %d recorded / %d duplicate, want 1/%d", ok, dup, attempts-1)
	}
	entry, _ := e.lbs.Get(ctx, track, "asha")
	if entry.Count != 1 {
		t.Errorf("entry.Count: got %d, want 1", entry.Count)
	}
}

func TestRecord_DifferentStudentsSameAssignment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	e.setNow(t0.Add(time.Minute))

	for _, id := range []string{"asha", "ben"} {
		if _, err := e.svc.Record(ctx, candidate(testutil.NewProfile(id, id, track), a1)); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}
	subs := e.subs.All()
	if len(subs) != 2 || subs[0].Bucket != subs[1].Bucket {
		t.Errorf("expected two submissions sharing a bucket, got %d", len(subs))
	}
}

func TestRecord_AssignmentNotInTrack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	web := testutil.NewProfile("wes", "Wes", "Web Development")

	_, err := e.svc.Record(ctx, candidate(web, a1))
	if !errors.Is(err, apperr.ErrAssignmentNotFound) {
		t.Errorf("Record: got %v, want assignment not found", err)
	}
	if _, err := e.svc.Prepare(ctx, web, a1.ID.Hex()); !errors.Is(err, apperr.ErrAssignmentNotFound) {
		t.Errorf("Prepare: got %v, want assignment not found", err)
	}
}

func TestRecord_StaleCreationDay(t *testing.T) {
	e := newEnv(t)
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)

	c := candidate(asha, a1)
	c.AssignmentCreatedAt = t0.Add(-48 * time.Hour)
	_, err := e.svc.Record(context.Background(), c)
	if !errors.Is(err, apperr.ErrAssignmentNotFound) {
		t.Errorf("got %v, want assignment not found", err)
	}
	if n := len(e.subs.All()); n != 0 {
		t.Errorf("submissions stored: got %d, want 0", n)
	}
}

func TestRecord_DeadlinePassed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.NewAssignment(track, "Timed", t0)
	deadline := t0.Add(time.Hour)
	a.Deadline = &deadline
	a, _ = e.asg.Create(ctx, a)
	asha := testutil.NewProfile("asha", "Asha", track)

	e.setNow(t0.Add(2 * time.Hour))
	if _, err := e.svc.Record(ctx, candidate(asha, a)); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Record after deadline: got %v, want validation", err)
	}
	if _, err := e.svc.Prepare(ctx, asha, a.ID.Hex()); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Prepare after deadline: got %v, want validation", err)
	}
}

func TestRecord_Validation(t *testing.T) {
	e := newEnv(t)
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)

	tests := []struct {
		name  string
		field string
		edit  func(*submissions.Candidate)
	}{
		{"missing file", "file", func(c *submissions.Candidate) { c.FileURL = "  " }},
		{"missing assignment", "assignment_id", func(c *submissions.Candidate) { c.AssignmentID = primitive.NilObjectID }},
		{"missing creation time", "assignment_created_at", func(c *submissions.Candidate) { c.AssignmentCreatedAt = time.Time{} }},
		{"missing student", "student_id", func(c *submissions.Candidate) { c.Profile.StudentID = "" }},
		{"long description", "description", func(c *submissions.Candidate) {
			c.Description = strings.Repeat("x", submissions.MaxDescriptionLen+1)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := candidate(asha, a1)
			tc.edit(&c)
			_, err := e.svc.Record(context.Background(), c)
			ae, ok := apperr.As(err)
			if !ok || ae.Kind != apperr.KindValidation {
				t.Fatalf("got %v, want validation", err)
			}
			if _, ok := ae.Fields[tc.field]; !ok {
				t.Errorf("Fields: got %v, want key %q", ae.Fields, tc.field)
			}
		})
	}
}

func TestRecord_DescriptionStripsMarkup(t *testing.T) {
	e := newEnv(t)
	a1 := e.assignment(t, "A1", t0)
	c := candidate(testutil.NewProfile("asha", "Asha", track), a1)
	c.Description = `<script>alert(1)</script><b>done</b> early`

	sub, err := e.svc.Record(context.Background(), c)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if strings.Contains(sub.Description, "<") {
		t.Errorf("Description kept markup: %q", sub.Description)
	}
	if !strings.Contains(sub.Description, "done early") {
		t.Errorf("Description: got %q, want text kept", sub.Description)
	}
}

func TestRecord_StoreFailures(t *testing.T) {
	t.Run("insert failure is unavailable", func(t *testing.T) {
		e := newEnv(t)
		a1 := e.assignment(t, "A1", t0)
		e.subs.FailOn("Insert", errors.New("no primary"))
		_, err := e.svc.Record(context.Background(), candidate(testutil.NewProfile("asha", "Asha", track), a1))
		if !errors.Is(err, apperr.ErrUnavailable) {
			t.Errorf("got %v, want unavailable", err)
		}
	})

	t.Run("index and leaderboard failures still record", func(t *testing.T) {
		e := newEnv(t)
		a1 := e.assignment(t, "A1", t0)
		e.index.FailOn("Append", errors.New("timeout"))
		e.lbs.FailOn("Record", errors.New("timeout"))
		sub, err := e.svc.Record(context.Background(), candidate(testutil.NewProfile("asha", "Asha", track), a1))
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if sub.ID.IsZero() {
			t.Error("submission should be stored")
		}
	})
}

func TestPrepare(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a1 := e.assignment(t, "A1", t0)
	asha := testutil.NewProfile("asha", "Asha", track)

	plan, err := e.svc.Prepare(ctx, asha, a1.ID.Hex())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if plan.Bucket != testutil.BucketOf(a1) || plan.Assignment.ID != a1.ID {
		t.Errorf("Prepare: got %+v", plan)
	}

	if _, err := e.svc.Prepare(ctx, asha, "nope"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad id: got %v, want validation", err)
	}
	if _, err := e.svc.Prepare(ctx, asha, primitive.NewObjectID().Hex()); !errors.Is(err, apperr.ErrAssignmentNotFound) {
		t.Errorf("unknown id: got %v, want assignment not found", err)
	}
}

func TestHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	asha := testutil.NewProfile("asha", "Asha", track)
	a1 := e.assignment(t, "A1", t0)
	a2 := e.assignment(t, "A2", t0.Add(time.Hour))

	e.setNow(t0.Add(2 * time.Hour))
	for _, a := range []models.Assignment{a1, a2} {
		if _, err := e.svc.Record(ctx, candidate(asha, a)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := e.svc.History(ctx, asha)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 || got[0].Title != "A2" {
		t.Errorf("History: got %d rows, first %q", len(got), firstTitle(got))
	}
}

func firstTitle(s []models.Submission) string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Title
}
