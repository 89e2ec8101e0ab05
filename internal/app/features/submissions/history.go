// internal/app/features/submissions/history.go
package submissions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
)

// ServeHistory handles GET /submissions.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	p, _ := profile.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Submissions.History(ctx, p)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	if list == nil {
		list = []models.Submission{}
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"submissions": list})
}
