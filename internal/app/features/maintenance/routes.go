// internal/app/features/maintenance/routes.go
package maintenance

import (
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin; paths are relative to it.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStaff))
	r.Post("/leaderboard/rebuild", h.HandleRebuild)
	r.Post("/profiles/backfill", h.HandleBackfill)
	return r
}
