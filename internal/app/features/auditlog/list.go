// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Events []audit.Event `json:"events"`
}

// ServeList handles GET /admin/audit?category=&event=&actor=&since=&n=.
// since is RFC 3339; events come back newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	const op = "auditlog.ServeList"

	filter := audit.QueryFilter{
		EventType: strings.TrimSpace(query.Get(r, "event")),
		ActorID:   strings.TrimSpace(query.Get(r, "actor")),
		Limit:     int64(paging.ParseLimit(r, paging.PageSize)),
	}

	switch c := strings.TrimSpace(query.Get(r, "category")); c {
	case "", audit.CategoryAuth, audit.CategoryStaff:
		filter.Category = c
	default:
		h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"category": "category must be auth or staff"}))
		return
	}

	if s := strings.TrimSpace(query.Get(r, "since")); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"since": "since must be an RFC 3339 time"}))
			return
		}
		filter.Since = &since
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Events: events})
}
