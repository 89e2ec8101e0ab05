package login_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/internhub/internal/app/features/login"
	"github.com/dalemusser/internhub/internal/testutil"
)

type body struct {
	SignedIn  bool `json:"signed_in"`
	Providers []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"providers"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serve(t *testing.T, h *login.Handler, target string, user *testutil.TestUser) body {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	if user != nil {
		req = testutil.WithUser(req, *user)
	}
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)
	var b body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return b
}

func TestServeLogin_ListsGoogle(t *testing.T) {
	b := serve(t, login.NewHandler(true), "/login?return=/leaderboard", nil)

	if b.SignedIn {
		t.Error("SignedIn should be false")
	}
	if len(b.Providers) != 1 || b.Providers[0].Name != "google" {
		t.Fatalf("providers: got %+v", b.Providers)
	}
	if b.Providers[0].URL != "/auth/google?return=%2Fleaderboard" {
		t.Errorf("URL: got %q", b.Providers[0].URL)
	}
}

func TestServeLogin_ErrorCodes(t *testing.T) {
	h := login.NewHandler(true)

	b := serve(t, h, "/login?error=invalid_state", nil)
	if b.Error != "invalid_state" || b.Message == "" {
		t.Errorf("known code: got %q / %q", b.Error, b.Message)
	}

	b = serve(t, h, "/login?error=<script>", nil)
	if b.Error != "internal" {
		t.Errorf("unknown code: got %q, want internal", b.Error)
	}
}

func TestServeLogin_SignedInAndDisabled(t *testing.T) {
	u := testutil.StudentUser("g-1")
	b := serve(t, login.NewHandler(false), "/login", &u)

	if !b.SignedIn {
		t.Error("SignedIn should be true")
	}
	if len(b.Providers) != 0 {
		t.Errorf("providers: got %+v, want none", b.Providers)
	}
}
