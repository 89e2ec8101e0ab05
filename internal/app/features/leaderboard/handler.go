// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	lbsvc "github.com/dalemusser/internhub/internal/app/services/leaderboard"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/authz"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// DefaultTop is the page size when the request carries no n.
const DefaultTop = 10

// Board is the leaderboard aggregator (services/leaderboard).
type Board interface {
	TopStudentsPage(ctx context.Context, track string, n int, cursor string) (lbsvc.Page, error)
	RankOf(ctx context.Context, track, studentID string) (models.Rank, error)
	Stats(ctx context.Context, track string) (models.TrackStats, error)
}

// Resolver finds a student's profile, for defaulting the track.
type Resolver interface {
	Resolve(ctx context.Context, studentID string) (models.Profile, error)
}

type Handler struct {
	Board    Board
	Profiles Resolver
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(board Board, profiles Resolver, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Board: board, Profiles: profiles, Log: logger, ErrLog: errLog}
}

// trackFor returns the ?track= parameter, or the signed-in student's own
// track when it is absent. Staff must name a track.
func (h *Handler) trackFor(ctx context.Context, r *http.Request, op string) (string, error) {
	if t := strings.TrimSpace(query.Get(r, "track")); t != "" {
		return t, nil
	}
	_, _, studentID, _ := authz.UserCtx(r)
	if !authz.IsStudent(r) {
		return "", apperr.Validation(op, map[string]string{"track": "track is required"})
	}
	p, err := h.Profiles.Resolve(ctx, studentID)
	if err != nil {
		return "", err
	}
	return p.Track, nil
}
