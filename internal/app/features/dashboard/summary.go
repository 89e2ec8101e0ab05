// internal/app/features/dashboard/summary.go
package dashboard

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	metricsstore "github.com/dalemusser/internhub/internal/app/store/metrics"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type summaryResponse struct {
	Track string `json:"track,omitempty"`
	sstore.Summary
	Counts   metricsstore.Counts   `json:"counts"`
	Students []sstore.StudentGroup `json:"students"`
}

// ServeSummary handles GET /admin/summary?track=. Submission totals cover
// every track; the counts and per-student groups follow ?track= when given.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	const op = "dashboard.ServeSummary"
	track := strings.TrimSpace(query.Get(r, "track"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sum, err := h.Submissions.Summarize(ctx, h.Now().UTC().Add(-recentWindow))
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	groups, err := h.Submissions.GroupByStudent(ctx, track)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}

	resp := summaryResponse{
		Track:    track,
		Summary:  sum,
		Counts:   h.Counts(ctx, track),
		Students: groups,
	}
	h.Log.Debug("staff summary served", zap.String("track", track), zap.Int64("submissions", sum.Total))
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
