package logout_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/features/logout"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return logout.NewHandler(sessionMgr, nil, logger), sessionMgr
}

func deletionCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
			return
		}
	}
	t.Error("expected session cookie to be set for deletion")
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("GET", "/logout", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
	deletionCookie(t, rec)
}

func TestServeLogout_JSONClient(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/logout", "")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "signed_out") {
		t.Errorf("body: got %q", rec.Body.String())
	}
	deletionCookie(t, rec)
}

func TestServeLogout_WithExistingSession(t *testing.T) {
	handler, sessionMgr := newTestHandler(t)

	req1 := httptest.NewRequest("GET", "/setup", nil)
	rec1 := httptest.NewRecorder()
	if err := sessionMgr.SignIn(rec1, req1, auth.SessionUser{ID: "g-1", Role: auth.RoleStudent}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req2 := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	handler.ServeLogout(rec2, req2)

	if rec2.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec2.Code)
	}
	deletionCookie(t, rec2)
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	handler, sm := newTestHandler(t)
	router := logout.Routes(handler, sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest("POST", "/", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous logout: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/", ""), testutil.StudentUser("g-1")))
	if rec.Code != http.StatusOK {
		t.Errorf("signed-in logout: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestServeLogout_Audited(t *testing.T) {
	handler, _ := newTestHandler(t)
	events := testutil.NewFakeAudit()
	handler.Audit = auditlog.New(events, zap.NewNop(), auditlog.Config{Auth: auditlog.DB})

	handler.ServeLogout(httptest.NewRecorder(), testutil.WithUser(httptest.NewRequest("POST", "/logout", nil), testutil.StudentUser("g-1")))
	handler.ServeLogout(httptest.NewRecorder(), httptest.NewRequest("POST", "/logout", nil))

	got := events.Events()
	if len(got) != 1 || got[0].EventType != audit.EventSignOut || got[0].ActorID != "g-1" {
		t.Errorf("expected one sign-out by g-1, got %+v", got)
	}
}
