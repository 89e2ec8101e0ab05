package submissionindex_test

import (
	"testing"

	"github.com/dalemusser/internhub/internal/app/store/submissionindex"
	"github.com/dalemusser/internhub/internal/testutil"
)

func TestStore_Append_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := submissionindex.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key := "Web_Development_65f000000000000000000001_2025-01-10"
	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, "Web Development", "asha", key); err != nil {
			t.Fatalf("Append #%d failed: %v", i+1, err)
		}
	}

	idx, err := store.Get(ctx, "Web Development", "asha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(idx.Keys) != 1 {
		t.Errorf("keys: got %v, want exactly one entry", idx.Keys)
	}
}

func TestStore_Get_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := submissionindex.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "Web Development", "nobody"); err != submissionindex.ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
