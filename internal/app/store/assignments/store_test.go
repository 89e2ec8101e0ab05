package assignments_test

import (
	"testing"
	"time"

	assignmentstore "github.com/dalemusser/internhub/internal/app/store/assignments"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetScopedByTrack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.Assignment{Track: "Web Development", Title: "A1", Kind: models.KindClasswork})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, "Web Development", a.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "A1" {
		t.Errorf("Title: got %q, want %q", got.Title, "A1")
	}

	if _, err := store.Get(ctx, "Data Analysis", a.ID); err != assignmentstore.ErrNotFound {
		t.Errorf("Get wrong track: got %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "Web Development", primitive.NewObjectID()); err != assignmentstore.ErrNotFound {
		t.Errorf("Get unknown id: got %v, want ErrNotFound", err)
	}
}

func TestStore_ListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	mk := func(title string, deadline *time.Time, created time.Time) {
		t.Helper()
		_, err := store.Create(ctx, models.Assignment{
			Track: "Data Analysis", Title: title, Kind: models.KindHomework,
			Deadline: deadline, CreatedAt: created,
		})
		if err != nil {
			t.Fatalf("Create %s failed: %v", title, err)
		}
	}
	mk("no-deadline", nil, now.Add(-3*time.Minute))
	mk("expired", &past, now.Add(-2*time.Minute))
	mk("open", &future, now.Add(-1*time.Minute))
	if _, err := store.Create(ctx, models.Assignment{Track: "Web Development", Title: "other-track", Kind: models.KindHomework}); err != nil {
		t.Fatalf("Create other-track failed: %v", err)
	}

	got, err := store.ListOpen(ctx, "Data Analysis", now)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 open assignments, got %d", len(got))
	}
	if got[0].Title != "open" || got[1].Title != "no-deadline" {
		t.Errorf("order: got [%s, %s], want [open, no-deadline]", got[0].Title, got[1].Title)
	}
}
