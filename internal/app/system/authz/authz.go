// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/internhub/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), name, identity-provider id and
// a found flag. Without a user (or with a blank id) it returns
// "visitor", "", "", false.
func UserCtx(r *http.Request) (role, name, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || strings.TrimSpace(user.ID) == "" {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsStaff reports whether the current request's user is staff.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == auth.RoleStaff
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == auth.RoleStudent
}

// StaffList is the configured allow-list of staff emails, matched
// case-insensitively.
type StaffList map[string]struct{}

// ParseStaffList splits a comma/whitespace separated list of emails.
func ParseStaffList(s string) StaffList {
	out := StaffList{}
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' }) {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

// RoleFor returns the portal role granted to a verified email at sign-in.
func (l StaffList) RoleFor(email string) string {
	if _, ok := l[strings.ToLower(strings.TrimSpace(email))]; ok {
		return auth.RoleStaff
	}
	return auth.RoleStudent
}
