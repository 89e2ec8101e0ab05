// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /admin/audit. Staff only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStaff))
	r.Get("/", h.ServeList)
	return r
}
