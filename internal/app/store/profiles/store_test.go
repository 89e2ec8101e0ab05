package profiles_test

import (
	"testing"

	profilestore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/system/indexes"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Profile{
		StudentID:   "uid-asha",
		Name:        "  Asha Rao ",
		Institution: "City College",
		Track:       "Data Analysis",
		Email:       "asha@example.com",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "Asha Rao" {
		t.Errorf("Name: got %q, want %q", created.Name, "Asha Rao")
	}

	got, err := store.Get(ctx, "Data Analysis", "uid-asha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID: got %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.Get(ctx, "Web Development", "uid-asha"); err != profilestore.ErrNotFound {
		t.Errorf("Get in other track: got %v, want ErrNotFound", err)
	}
}

func TestStore_Create_DuplicateInTrack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := profilestore.New(db)

	p := models.Profile{StudentID: "uid-1", Name: "A", Track: "Web Development", Email: "a@example.com", Institution: "X"}
	if _, err := store.Create(ctx, p); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, p); err != profilestore.ErrDuplicate {
		t.Errorf("second Create: got %v, want ErrDuplicate", err)
	}
}

func TestStore_Directory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.LookupTrack(ctx, "uid-1"); err != profilestore.ErrNotFound {
		t.Fatalf("LookupTrack before put: got %v, want ErrNotFound", err)
	}
	if err := store.PutDirectory(ctx, "uid-1", "Web Development"); err != nil {
		t.Fatalf("PutDirectory failed: %v", err)
	}
	if err := store.PutDirectory(ctx, "uid-1", "Data Analysis"); err != nil {
		t.Fatalf("PutDirectory (update) failed: %v", err)
	}
	track, err := store.LookupTrack(ctx, "uid-1")
	if err != nil {
		t.Fatalf("LookupTrack failed: %v", err)
	}
	if track != "Data Analysis" {
		t.Errorf("track: got %q, want %q", track, "Data Analysis")
	}
}

func TestStore_ClaimDirectory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if err := store.ClaimDirectory(ctx, "uid-1", "Web Development"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := store.ClaimDirectory(ctx, "uid-1", "Data Analysis"); err != profilestore.ErrDuplicate {
		t.Fatalf("second claim: got %v, want ErrDuplicate", err)
	}

	// Release only removes an entry that still points at the given track.
	if err := store.ReleaseDirectory(ctx, "uid-1", "Data Analysis"); err != nil {
		t.Fatalf("ReleaseDirectory failed: %v", err)
	}
	if track, err := store.LookupTrack(ctx, "uid-1"); err != nil || track != "Web Development" {
		t.Fatalf("after foreign release: got %q, %v", track, err)
	}
	if err := store.ReleaseDirectory(ctx, "uid-1", "Web Development"); err != nil {
		t.Fatalf("ReleaseDirectory failed: %v", err)
	}
	if err := store.ClaimDirectory(ctx, "uid-1", "Data Analysis"); err != nil {
		t.Errorf("claim after release failed: %v", err)
	}
}

func TestStore_Count(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, p := range []models.Profile{
		testutil.NewProfile("s1", "Asha", "Web Development"),
		testutil.NewProfile("s2", "Tobi", "Web Development"),
		testutil.NewProfile("s3", "Mei", "Data Analysis"),
	} {
		if _, err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	tests := map[string]int64{"": 3, "Web Development": 2, "Mobile Application Development": 0}
	for track, want := range tests {
		got, err := store.Count(ctx, track)
		if err != nil {
			t.Fatalf("Count(%q) failed: %v", track, err)
		}
		if got != want {
			t.Errorf("Count(%q): got %d, want %d", track, got, want)
		}
	}
}
