// internal/app/features/reports/export.go
package reports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/csvutil"
	"github.com/dalemusser/internhub/internal/app/system/sheetexport"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

var errRowCap = errors.New("export row cap reached")

// collect gathers export rows for f, newest first, up to MaxExportRows.
func (h *Handler) collect(ctx context.Context, f sstore.Filter) ([][]string, bool, error) {
	var rows [][]string
	err := h.Submissions.Each(ctx, f, func(s models.Submission) error {
		if len(rows) == csvutil.MaxExportRows {
			return errRowCap
		}
		rows = append(rows, sheetexport.Row(s))
		return nil
	})
	if errors.Is(err, errRowCap) {
		return rows, true, nil
	}
	return rows, false, err
}

// ServeCSV handles GET /admin/submissions.csv with the list filters.
func (h *Handler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	const op = "reports.ServeCSV"
	f, err := h.filterFromQuery(r, op)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, capped, err := h.collect(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	if capped {
		h.Log.Warn("csv export truncated", zap.Int("rows", len(rows)), zap.String("track", f.Track))
	}

	filename := "submissions_" + h.Now().UTC().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	cw, err := csvutil.NewWriter(w)
	if err != nil {
		h.Log.Warn("csv write failed", zap.Error(err))
		return
	}
	_ = cw.Write(sheetexport.Header)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			h.Log.Warn("csv write failed", zap.Error(err))
			return
		}
	}
	if err := cw.Flush(); err != nil {
		h.Log.Warn("csv flush failed", zap.Error(err))
	}
}

// HandleSheetPush handles POST /admin/submissions/sheet: the filtered rows
// replace the configured spreadsheet range.
func (h *Handler) HandleSheetPush(w http.ResponseWriter, r *http.Request) {
	const op = "reports.HandleSheetPush"
	if h.Sheet == nil {
		h.ErrLog.Write(w, r, apperr.New(apperr.KindUnavailable, op, "spreadsheet export is not configured"))
		return
	}
	f, err := h.filterFromQuery(r, op)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "sheet push")
	defer cancel()

	rows, capped, err := h.collect(ctx, f)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	n, err := h.Sheet.Push(ctx, rows)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}
	h.Audit.StaffAction(r.Context(), r, audit.EventSheetPushed, f.Track, map[string]string{
		"rows":      strconv.Itoa(n),
		"truncated": strconv.FormatBool(capped),
	})
	h.Log.Info("sheet export pushed", zap.Int("rows", n), zap.Bool("truncated", capped))
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"rows": n, "truncated": capped})
}
