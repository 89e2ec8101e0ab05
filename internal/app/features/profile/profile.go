// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/services/profiles"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/formutil"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

type userView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
}

type meResponse struct {
	User               userView        `json:"user"`
	Profile            *models.Profile `json:"profile"`
	OnboardingRequired bool            `json:"onboarding_required"`
}

// ServeMe handles GET /me: the principal and, for students, their profile.
// A student without a profile is told to onboard.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	resp := meResponse{User: userView{ID: u.ID, Name: u.Name, Email: u.Email, Picture: u.Picture, Role: u.Role}}

	if !u.IsStaff() {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		p, err := h.Profiles.Resolve(ctx, u.ID)
		switch {
		case err == nil:
			resp.Profile = &p
		case errors.Is(err, apperr.ErrProfileNotFound):
			resp.OnboardingRequired = true
		default:
			h.ErrLog.Write(w, r, err)
			return
		}
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}

// HandleOnboard handles POST /onboarding. The identity's email is used when
// the form leaves it blank.
func (h *Handler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in profiles.OnboardInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if in.Email == "" {
		in.Email = u.Email
	}
	if in.Name == "" {
		in.Name = u.Name
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Profiles.Onboard(ctx, u.ID, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Log.Debug("onboarding complete", zap.String("student_id", u.ID), zap.String("track", p.Track))
	uierrors.WriteJSON(w, http.StatusCreated, p)
}

// ServeTracks handles GET /tracks.
func (h *Handler) ServeTracks(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, map[string][]string{"tracks": h.Catalog.Names()})
}
