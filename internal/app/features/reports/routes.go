// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin/submissions.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStaff))
	r.Get("/", h.ServeList)
	r.Post("/sheet", h.HandleSheetPush)
	return r
}
