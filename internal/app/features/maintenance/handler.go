// internal/app/features/maintenance/handler.go
package maintenance

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Rebuilder recomputes leaderboards from submissions (services/leaderboard).
type Rebuilder interface {
	Rebuild(ctx context.Context, track string) (int, error)
	RebuildAll(ctx context.Context) (int, error)
}

// Backfiller rewrites the profile directory (services/profiles).
type Backfiller interface {
	BackfillDirectory(ctx context.Context) (int, error)
}

// Handler runs the staff-triggered repair operations that the scheduler
// also runs periodically.
type Handler struct {
	Leaderboard Rebuilder
	Profiles    Backfiller
	Audit       *auditlog.Logger
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(lb Rebuilder, profiles Backfiller, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Leaderboard: lb, Profiles: profiles, Audit: audit, Log: logger, ErrLog: errLog}
}

// HandleRebuild handles POST /admin/leaderboard/rebuild?track=. Without a
// track every catalog track is rebuilt.
func (h *Handler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	track := strings.TrimSpace(query.Get(r, "track"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "leaderboard rebuild")
	defer cancel()

	var n int
	var err error
	if track != "" {
		n, err = h.Leaderboard.Rebuild(ctx, track)
	} else {
		n, err = h.Leaderboard.RebuildAll(ctx)
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.StaffAction(r.Context(), r, audit.EventLeaderboardRebuilt, track, map[string]string{"entries": strconv.Itoa(n)})
	h.Log.Info("leaderboard rebuild requested",
		zap.String("track", track), zap.Int("entries", n), zap.String("by", requester(r)))
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"track": track, "entries": n})
}

// HandleBackfill handles POST /admin/profiles/backfill.
func (h *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "profile backfill")
	defer cancel()

	n, err := h.Profiles.BackfillDirectory(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.StaffAction(r.Context(), r, audit.EventDirectoryBackfilled, "", map[string]string{"profiles": strconv.Itoa(n)})
	h.Log.Info("profile directory backfilled", zap.Int("profiles", n), zap.String("by", requester(r)))
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"profiles": n})
}

func requester(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Email
	}
	return ""
}
