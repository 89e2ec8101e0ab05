package logout

import (
	"net/http"
	"strings"

	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
	}
}

// ServeLogout handles GET and POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	// A fresh session is returned even when decoding fails; the deletion
	// cookie is still written.
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed during logout", zap.Error(err))
	}

	// Ensure the deletion-cookie matches the original store settings.
	if opts := h.SessionMgr.Store().Options; opts != nil {
		session.Options.Domain = opts.Domain
		session.Options.Path = opts.Path
		session.Options.Secure = opts.Secure
		session.Options.HttpOnly = opts.HttpOnly
		session.Options.SameSite = opts.SameSite
	}
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.SignOut(r.Context(), r)
		h.Log.Info("signed out", zap.String("student_id", u.ID))
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"signed_out"}` + "\n"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
