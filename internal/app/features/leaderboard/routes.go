// internal/app/features/leaderboard/routes.go
package leaderboard

import (
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, ph *profile.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeTop)
	r.Get("/stats", h.ServeStats)
	r.With(sm.RequireRole(auth.RoleStudent), ph.Require).Get("/me", h.ServeMine)
	return r
}
