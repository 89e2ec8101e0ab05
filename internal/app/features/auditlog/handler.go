// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Querier reads audit events (store/audit).
type Querier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

type Handler struct {
	Events Querier
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(events Querier, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger, ErrLog: errLog}
}
