// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Source lists and streams submissions (store/submissions).
type Source interface {
	List(ctx context.Context, f sstore.Filter) ([]models.Submission, error)
	Each(ctx context.Context, f sstore.Filter, fn func(models.Submission) error) error
}

// Pusher overwrites the export spreadsheet (system/sheetexport).
type Pusher interface {
	Push(ctx context.Context, rows [][]string) (int, error)
}

type Handler struct {
	Submissions Source
	Sheet       Pusher // nil when the sheet push is not configured
	Catalog     *trackcatalog.Catalog
	Audit       *auditlog.Logger
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Now         func() time.Time
}

func NewHandler(src Source, sheet Pusher, catalog *trackcatalog.Catalog, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if catalog == nil {
		catalog = trackcatalog.Default()
	}
	return &Handler{
		Submissions: src,
		Sheet:       sheet,
		Catalog:     catalog,
		Audit:       audit,
		Log:         logger,
		ErrLog:      errLog,
		Now:         time.Now,
	}
}

// filterFromQuery reads ?track=&kind=&q=. Unknown tracks and kinds are
// rejected rather than silently matching nothing.
func (h *Handler) filterFromQuery(r *http.Request, op string) (sstore.Filter, error) {
	f := sstore.Filter{
		Track:  strings.TrimSpace(query.Get(r, "track")),
		Kind:   strings.ToLower(strings.TrimSpace(query.Get(r, "kind"))),
		Search: strings.TrimSpace(query.Get(r, "q")),
	}
	fields := map[string]string{}
	if f.Track != "" && !h.Catalog.Contains(f.Track) {
		fields["track"] = "unknown track"
	}
	if f.Kind != "" && !models.IsValidKind(f.Kind) {
		fields["kind"] = "kind must be classwork or homework"
	}
	if len(fields) > 0 {
		return sstore.Filter{}, apperr.Validation(op, fields)
	}
	return f, nil
}
