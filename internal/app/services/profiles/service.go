// Package profiles resolves and creates student profiles. Profiles are
// partitioned by track; a directory maps each student to their track.
package profiles

import (
	"context"
	"errors"
	"strings"
	"time"

	pstore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/inputval"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

// Store is the profile persistence the service needs (store/profiles).
type Store interface {
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	Get(ctx context.Context, track, studentID string) (models.Profile, error)
	LookupTrack(ctx context.Context, studentID string) (string, error)
	PutDirectory(ctx context.Context, studentID, track string) error
	ClaimDirectory(ctx context.Context, studentID, track string) error
	ReleaseDirectory(ctx context.Context, studentID, track string) error
	Each(ctx context.Context, fn func(models.Profile) error) error
}

type Service struct {
	store   Store
	catalog *trackcatalog.Catalog
	log     *zap.Logger
	now     func() time.Time
}

func New(store Store, catalog *trackcatalog.Catalog, log *zap.Logger) *Service {
	if catalog == nil {
		catalog = trackcatalog.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, catalog: catalog, log: log, now: time.Now}
}

// Resolve returns the profile of studentID. The directory is consulted
// first; on a miss (or a stale entry) every catalog track is probed in order
// and the directory is repaired from the hit.
func (s *Service) Resolve(ctx context.Context, studentID string) (models.Profile, error) {
	const op = "profiles.Resolve"
	if strings.TrimSpace(studentID) == "" {
		return models.Profile{}, apperr.Validation(op, map[string]string{"student_id": "student id is required"})
	}

	track, err := s.store.LookupTrack(ctx, studentID)
	switch {
	case err == nil:
		p, gerr := s.store.Get(ctx, track, studentID)
		if gerr == nil {
			return p, nil
		}
		if !errors.Is(gerr, pstore.ErrNotFound) {
			return models.Profile{}, apperr.Unavailable(op, gerr)
		}
		s.log.Warn("stale profile directory entry", zap.String("student_id", studentID), zap.String("track", track))
	case errors.Is(err, pstore.ErrNotFound):
	default:
		return models.Profile{}, apperr.Unavailable(op, err)
	}

	for _, t := range s.catalog.Names() {
		p, err := s.store.Get(ctx, t, studentID)
		if errors.Is(err, pstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return models.Profile{}, apperr.Unavailable(op, err)
		}
		if derr := s.store.PutDirectory(ctx, studentID, t); derr != nil {
			s.log.Warn("profile directory backfill", zap.String("student_id", studentID), zap.Error(derr))
		}
		return p, nil
	}
	return models.Profile{}, apperr.New(apperr.KindProfileNotFound, op, "complete onboarding first")
}

// OnboardInput is the one-time profile form.
type OnboardInput struct {
	Name        string `json:"name" validate:"notblank,max=120" label:"Full name"`
	Institution string `json:"institution" validate:"notblank,max=160" label:"Institution"`
	Track       string `json:"track" validate:"notblank" label:"Track"`
	Email       string `json:"email" validate:"required,email,max=254" label:"Email"`
}

// Onboard creates the student's profile. A student holds at most one
// profile across all tracks; profiles are never edited afterwards.
func (s *Service) Onboard(ctx context.Context, studentID string, in OnboardInput) (models.Profile, error) {
	const op = "profiles.Onboard"
	in.Name = strings.TrimSpace(in.Name)
	in.Institution = strings.TrimSpace(in.Institution)
	in.Track = strings.TrimSpace(in.Track)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if res := inputval.Validate(in); res.HasErrors() {
		return models.Profile{}, apperr.Validation(op, res.Fields())
	}
	if !s.catalog.Contains(in.Track) {
		return models.Profile{}, apperr.Validation(op, map[string]string{"track": "unknown track"})
	}
	if strings.TrimSpace(studentID) == "" {
		return models.Profile{}, apperr.Validation(op, map[string]string{"student_id": "student id is required"})
	}

	if _, err := s.Resolve(ctx, studentID); err == nil {
		return models.Profile{}, apperr.New(apperr.KindConflict, op, "profile already exists")
	} else if !errors.Is(err, apperr.ErrProfileNotFound) {
		return models.Profile{}, err
	}

	// The directory entry is unique per student, so of two concurrent
	// onboardings (in any tracks) only one gets past the claim.
	err := s.store.ClaimDirectory(ctx, studentID, in.Track)
	if errors.Is(err, pstore.ErrDuplicate) {
		return models.Profile{}, apperr.New(apperr.KindConflict, op, "profile already exists")
	}
	if err != nil {
		return models.Profile{}, apperr.Unavailable(op, err)
	}

	p, err := s.store.Create(ctx, models.Profile{
		StudentID:   studentID,
		Name:        in.Name,
		Institution: in.Institution,
		Track:       in.Track,
		Email:       in.Email,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	})
	if errors.Is(err, pstore.ErrDuplicate) {
		return models.Profile{}, apperr.New(apperr.KindConflict, op, "profile already exists")
	}
	if err != nil {
		if rerr := s.store.ReleaseDirectory(ctx, studentID, in.Track); rerr != nil {
			s.log.Error("release profile directory claim", zap.String("student_id", studentID), zap.Error(rerr))
		}
		return models.Profile{}, apperr.Unavailable(op, err)
	}
	s.log.Info("student onboarded", zap.String("student_id", studentID), zap.String("track", p.Track))
	return p, nil
}

// BackfillDirectory upserts a directory entry for every stored profile and
// returns how many were written.
func (s *Service) BackfillDirectory(ctx context.Context) (int, error) {
	const op = "profiles.BackfillDirectory"
	n := 0
	err := s.store.Each(ctx, func(p models.Profile) error {
		if err := s.store.PutDirectory(ctx, p.StudentID, p.Track); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, apperr.Unavailable(op, err)
	}
	return n, nil
}
