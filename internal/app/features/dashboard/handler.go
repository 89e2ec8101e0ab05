// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	metricsstore "github.com/dalemusser/internhub/internal/app/store/metrics"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recentWindow is how far back "recent submissions" reaches.
const recentWindow = 7 * 24 * time.Hour

// SummarySource aggregates submissions (store/submissions).
type SummarySource interface {
	Summarize(ctx context.Context, since time.Time) (sstore.Summary, error)
	GroupByStudent(ctx context.Context, track string) ([]sstore.StudentGroup, error)
}

type Handler struct {
	Counts      func(ctx context.Context, track string) metricsstore.Counts
	Submissions SummarySource
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Now         func() time.Time
}

func NewHandler(db *mongo.Database, subs SummarySource, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Counts: func(ctx context.Context, track string) metricsstore.Counts {
			return metricsstore.FetchCounts(ctx, db, track)
		},
		Submissions: subs,
		Log:         logger,
		ErrLog:      errLog,
		Now:         time.Now,
	}
}
