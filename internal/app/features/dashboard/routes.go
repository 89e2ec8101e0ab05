// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the staff summary under whatever mount point the top-level
// router chooses (e.g., "/admin/summary").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(auth.RoleStaff))
		pr.Get("/", h.ServeSummary)
	})
	return r
}
