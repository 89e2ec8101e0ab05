// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MeRoutes serves /me.
func MeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeMe)
	return r
}

// OnboardingRoutes serves /onboarding.
func OnboardingRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStudent))
	r.Post("/", h.HandleOnboard)
	return r
}

// TrackRoutes serves /tracks.
func TrackRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTracks)
	return r
}
