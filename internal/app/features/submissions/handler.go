// internal/app/features/submissions/handler.go
package submissions

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	ssvc "github.com/dalemusser/internhub/internal/app/services/submissions"
	"github.com/dalemusser/internhub/internal/app/system/filestore"
	"github.com/dalemusser/internhub/internal/app/system/ratelimit"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

// MaxUploadBytes caps the multipart request body.
const MaxUploadBytes = 32 << 20

// Recorder is the submission service (services/submissions).
type Recorder interface {
	Prepare(ctx context.Context, p models.Profile, assignmentIDHex string) (ssvc.Plan, error)
	Record(ctx context.Context, c ssvc.Candidate) (models.Submission, error)
	History(ctx context.Context, p models.Profile) ([]models.Submission, error)
}

type Handler struct {
	Submissions Recorder
	Files       filestore.Store
	Limiter     *ratelimit.Limiter // per student; nil disables limiting
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	now         func() time.Time
}

func NewHandler(rec Recorder, files filestore.Store, limiter *ratelimit.Limiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Submissions: rec,
		Files:       files,
		Limiter:     limiter,
		Log:         logger,
		ErrLog:      errLog,
		now:         time.Now,
	}
}
