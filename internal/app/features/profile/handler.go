// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/services/profiles"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

// Profiles is the profile service (services/profiles).
type Profiles interface {
	Resolve(ctx context.Context, studentID string) (models.Profile, error)
	Onboard(ctx context.Context, studentID string, in profiles.OnboardInput) (models.Profile, error)
}

// Handler owns /me, /onboarding and /tracks.
type Handler struct {
	Profiles Profiles
	Catalog  *trackcatalog.Catalog
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs a Handler.
func NewHandler(p Profiles, catalog *trackcatalog.Catalog, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: p,
		Catalog:  catalog,
		Log:      logger,
		ErrLog:   errLog,
	}
}
