package profile_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/services/profiles"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *testutil.FakeProfiles) {
	t.Helper()
	store := testutil.NewFakeProfiles()
	catalog := trackcatalog.Default()
	logger := zap.NewNop()
	svc := profiles.New(store, catalog, logger)
	return profile.NewHandler(svc, catalog, uierrors.NewErrorLogger(logger), logger), store
}

type meBody struct {
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
	Profile *struct {
		Track string `json:"track"`
		Name  string `json:"name"`
	} `json:"profile"`
	OnboardingRequired bool `json:"onboarding_required"`
}

func getMe(t *testing.T, h *profile.Handler, u testutil.TestUser) (*httptest.ResponseRecorder, meBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedRequest("GET", "/me", u))
	var b meBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec, b
}

func TestServeMe_NoProfileRequiresOnboarding(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, b := getMe(t, h, testutil.StudentUser("g-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !b.OnboardingRequired || b.Profile != nil {
		t.Errorf("body: got %+v, want onboarding required", b)
	}
}

func TestOnboardThenMe(t *testing.T) {
	h, store := newTestHandler(t)
	u := testutil.StudentUser("g-1")

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/onboarding",
		`{"name":"Asha","institution":"State University","track":"Data Analysis"}`), u)
	rec := testutil.NewRecorder()
	h.HandleOnboard(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	if track, ok := store.Directory("g-1"); !ok || track != "Data Analysis" {
		t.Errorf("directory: got %q (%v)", track, ok)
	}

	_, b := getMe(t, h, u)
	if b.Profile == nil || b.Profile.Track != "Data Analysis" || b.OnboardingRequired {
		t.Errorf("me after onboarding: got %+v", b)
	}

	// A second onboarding is refused.
	rec = testutil.NewRecorder()
	h.HandleOnboard(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/onboarding",
		`{"name":"Asha","institution":"State University","track":"Web Development"}`), u))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, `"conflict"`)
}

func TestHandleOnboard_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.HandleOnboard(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/onboarding",
		`{"name":"Asha","institution":"","track":"Basket Weaving"}`), testutil.StudentUser("g-1")))

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"validation_error"`)
	rec.AssertContains(t, `"institution"`)
}

func TestServeMe_StaffHasNoProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, b := getMe(t, h, testutil.StaffUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if b.User.Role != "staff" || b.OnboardingRequired || b.Profile != nil {
		t.Errorf("body: got %+v", b)
	}
}

func TestRequire(t *testing.T) {
	h, store := newTestHandler(t)
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := profile.FromRequest(r)
		reached = ok && p.StudentID == "g-1"
	})

	rec := testutil.NewRecorder()
	h.Require(next).ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/assignments", testutil.StudentUser("g-1")))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, `"profile_not_found"`)

	store.Seed(testutil.NewProfile("g-1", "Asha", "Data Analysis"))
	rec = testutil.NewRecorder()
	h.Require(next).ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/assignments", testutil.StudentUser("g-1")))
	rec.AssertStatus(t, http.StatusOK)
	if !reached {
		t.Error("next handler should see the resolved profile")
	}
}

func TestServeTracks(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.ServeTracks(rec, testutil.NewRequest("GET", "/tracks"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Mobile Application Development")
}
