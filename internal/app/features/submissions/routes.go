// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, ph *profile.Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(auth.RoleStudent))
	r.Use(ph.Require)
	r.Get("/", h.ServeHistory)
	r.Post("/", h.HandleSubmit)
	return r
}
