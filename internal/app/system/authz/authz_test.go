package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/authz"
)

func TestUserCtx(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if role, _, _, ok := authz.UserCtx(req); ok || role != "visitor" {
		t.Errorf("anonymous: got %q, %v; want visitor, false", role, ok)
	}

	req = auth.WithTestUser(req, &auth.SessionUser{ID: "g-1", Name: "Tobi", Role: "Staff"})
	role, name, id, ok := authz.UserCtx(req)
	if !ok || role != "staff" || name != "Tobi" || id != "g-1" {
		t.Errorf("staff: got %q %q %q %v", role, name, id, ok)
	}
	if !authz.IsStaff(req) || authz.IsStudent(req) {
		t.Error("IsStaff/IsStudent mismatch for staff user")
	}
}

func TestUserCtx_BlankIDFailsClosed(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{Role: "staff"})
	if authz.IsStaff(req) {
		t.Error("blank id must not be treated as signed in")
	}
}

func TestStaffList_RoleFor(t *testing.T) {
	l := authz.ParseStaffList("mentor@example.com, Lead@Example.com;ops@example.com")
	tests := map[string]string{
		"mentor@example.com": auth.RoleStaff,
		"LEAD@example.com":   auth.RoleStaff,
		" ops@example.com ":  auth.RoleStaff,
		"asha@example.com":   auth.RoleStudent,
		"":                   auth.RoleStudent,
	}
	for email, want := range tests {
		if got := l.RoleFor(email); got != want {
			t.Errorf("RoleFor(%q): got %q, want %q", email, got, want)
		}
	}
}
