// internal/app/features/leaderboard/leaderboard.go
package leaderboard

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type topResponse struct {
	Track   string                    `json:"track"`
	Entries []models.LeaderboardEntry `json:"entries"`
	Next    string                    `json:"next,omitempty"`
}

// ServeTop handles GET /leaderboard?track=&n=&after=.
func (h *Handler) ServeTop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	track, err := h.trackFor(ctx, r, "leaderboard.ServeTop")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	page, err := h.Board.TopStudentsPage(ctx, track, paging.ParseLimit(r, DefaultTop), query.Get(r, "after"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	entries := page.Entries
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	uierrors.WriteJSON(w, http.StatusOK, topResponse{Track: track, Entries: entries, Next: page.Next})
}

// ServeMine handles GET /leaderboard/me for an onboarded student.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	p, _ := profile.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rank, err := h.Board.RankOf(ctx, p.Track, p.StudentID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, rank)
}

// ServeStats handles GET /leaderboard/stats?track=.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	track, err := h.trackFor(ctx, r, "leaderboard.ServeStats")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	st, err := h.Board.Stats(ctx, track)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, st)
}
