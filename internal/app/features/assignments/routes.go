// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /assignments to onboarded students.
func Routes(h *Handler, ph *profile.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStudent))
	r.Use(ph.Require)
	r.Get("/", h.ServeOpen)
	return r
}

// AdminRoutes serves /admin/assignments to staff.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStaff))
	r.Get("/", h.ServeAdminList)
	r.Post("/", h.HandleCreate)
	return r
}
