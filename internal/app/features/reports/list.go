// internal/app/features/reports/list.go
package reports

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Submissions []models.Submission `json:"submissions"`
	Next        string              `json:"next,omitempty"`
}

// ServeList handles GET /admin/submissions?track=&kind=&q=&after=&n=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	const op = "reports.ServeList"
	f, err := h.filterFromQuery(r, op)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if tok := query.Get(r, "after"); tok != "" {
		c, ok := paging.DecodeTime(tok)
		if !ok {
			h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"after": "invalid cursor"}))
			return
		}
		f.After = &c
	}
	n := paging.ParseLimit(r, paging.PageSize)
	f.Limit = paging.LimitPlusOne(n)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rows, err := h.Submissions.List(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	resp := listResponse{Submissions: rows}
	if paging.TrimPage(&resp.Submissions, n) {
		last := resp.Submissions[len(resp.Submissions)-1]
		resp.Next = paging.EncodeTime(last.CreatedAt, last.ID)
	}
	if resp.Submissions == nil {
		resp.Submissions = []models.Submission{}
	}
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
