package submissions_test

import (
	"sync"
	"testing"
	"time"

	submissionstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/system/indexes"
	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSub(bucket, student, kind string, at time.Time) models.Submission {
	return models.Submission{
		Bucket:       bucket,
		Track:        "Web Development",
		StudentID:    student,
		StudentName:  "Student " + student,
		StudentEmail: student + "@example.com",
		AssignmentID: primitive.NewObjectID(),
		Title:        "A1",
		Kind:         kind,
		FileURL:      "https://files.example.com/" + student,
		Status:       models.SubmissionStatusSubmitted,
		CreatedAt:    at,
	}
}

func TestStore_Insert_ConcurrentCreateIfAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := submissionstore.New(db)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dup   int
		otherErrs []error
	)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.Insert(ctx, newSub("bucket-1", "asha", models.KindClasswork, time.Now().UTC()))
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				ok++
			case submissionstore.ErrDuplicate:
				dup++
			default:
				otherErrs = append(otherErrs, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if len(otherErrs) > 0 {
		t.Fatalf("unexpected errors: %v", otherErrs)
	}
	if ok != 1 || dup != attempts-1 {
		t.Errorf("got %d successes and %d duplicates, want 1 and %d", ok, dup, attempts-1)
	}
}

func TestStore_ListPagedAndSummarize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := submissionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	for i, student := range []string{"a", "b", "c"} {
		kind := models.KindClasswork
		if i == 2 {
			kind = models.KindHomework
		}
		if _, err := store.Insert(ctx, newSub("bucket", student, kind, base.Add(time.Duration(i)*24*time.Hour))); err != nil {
			t.Fatalf("Insert %s failed: %v", student, err)
		}
	}

	page, err := store.List(ctx, submissionstore.Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 || page[0].StudentID != "c" || page[1].StudentID != "b" {
		t.Fatalf("first page: got %v", ids(page))
	}

	last := page[len(page)-1]
	after := paging.TimeCursor{At: last.CreatedAt, ID: last.ID}
	next, err := store.List(ctx, submissionstore.Filter{Limit: 2, After: &after})
	if err != nil {
		t.Fatalf("List (next) failed: %v", err)
	}
	if len(next) != 1 || next[0].StudentID != "a" {
		t.Errorf("second page: got %v, want [a]", ids(next))
	}

	search, err := store.List(ctx, submissionstore.Filter{Search: "B@EXAMPLE"})
	if err != nil {
		t.Fatalf("List (search) failed: %v", err)
	}
	if len(search) != 1 || search[0].StudentID != "b" {
		t.Errorf("search: got %v, want [b]", ids(search))
	}

	sum, err := store.Summarize(ctx, base.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.Total != 3 || sum.Classwork != 2 || sum.Homework != 1 || sum.Recent != 1 {
		t.Errorf("summary: got %+v", sum)
	}
}

func ids(subs []models.Submission) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.StudentID
	}
	return out
}
