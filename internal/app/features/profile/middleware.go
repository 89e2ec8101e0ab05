// internal/app/features/profile/middleware.go
package profile

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
)

type ctxKey struct{}

// FromRequest returns the profile attached by Require.
func FromRequest(r *http.Request) (models.Profile, bool) {
	p, ok := r.Context().Value(ctxKey{}).(models.Profile)
	return p, ok
}

// WithProfile attaches p to the request, for handler tests.
func WithProfile(r *http.Request, p models.Profile) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, p))
}

// Require resolves the signed-in student's profile and attaches it to the
// request. Students who have not onboarded get profile_not_found.
func (h *Handler) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r)
		if !ok {
			uierrors.WriteCode(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		p, err := h.Profiles.Resolve(ctx, u.ID)
		cancel()
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		next.ServeHTTP(w, WithProfile(r, p))
	})
}
