// Package assignments lets staff publish assignments to a track.
package assignments

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/internhub/internal/app/system/inputval"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, a models.Assignment) (models.Assignment, error)
	ListOpen(ctx context.Context, track string, now time.Time) ([]models.Assignment, error)
	List(ctx context.Context, track string) ([]models.Assignment, error)
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

// Input is the staff form for a new assignment.
type Input struct {
	Track       string     `json:"track" validate:"notblank" label:"Track"`
	Title       string     `json:"title" validate:"notblank,max=200" label:"Title"`
	Kind        string     `json:"kind" validate:"required,kind" label:"Kind"`
	Description string     `json:"description" validate:"max=20000" label:"Description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Create validates and stores a new assignment. Descriptions may carry
// formatting markup, which is sanitized.
func (s *Service) Create(ctx context.Context, createdBy string, in Input) (models.Assignment, error) {
	const op = "assignments.Create"
	in.Track = strings.TrimSpace(in.Track)
	in.Title = strings.TrimSpace(in.Title)
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))

	if res := inputval.Validate(in); res.HasErrors() {
		return models.Assignment{}, apperr.Validation(op, res.Fields())
	}
	if !s.catalog.Contains(in.Track) {
		return models.Assignment{}, apperr.Validation(op, map[string]string{"track": "unknown track"})
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if in.Deadline != nil {
		d := in.Deadline.UTC().Truncate(time.Millisecond)
		if !d.After(now) {
			return models.Assignment{}, apperr.Validation(op, map[string]string{"deadline": "deadline must be in the future"})
		}
		in.Deadline = &d
	}

	a, err := s.store.Create(ctx, models.Assignment{
		Track:       in.Track,
		Title:       in.Title,
		Kind:        in.Kind,
		Description: htmlsanitize.Sanitize(in.Description),
		Deadline:    in.Deadline,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	})
	if err != nil {
		return models.Assignment{}, apperr.Unavailable(op, err)
	}
	s.log.Info("assignment created", zap.String("track", a.Track), zap.String("id", a.ID.Hex()), zap.String("kind", a.Kind))
	return a, nil
}

// ListOpen returns the track's assignments still accepting submissions.
func (s *Service) ListOpen(ctx context.Context, track string) ([]models.Assignment, error) {
	out, err := s.store.ListOpen(ctx, track, s.now().UTC())
	if err != nil {
		return nil, apperr.Unavailable("assignments.ListOpen", err)
	}
	return out, nil
}

// List returns every assignment of track ("" for all tracks), newest first.
func (s *Service) List(ctx context.Context, track string) ([]models.Assignment, error) {
	if track != "" && !s.catalog.Contains(track) {
		return nil, apperr.Validation("assignments.List", map[string]string{"track": "unknown track"})
	}
	out, err := s.store.List(ctx, track)
	if err != nil {
		return nil, apperr.Unavailable("assignments.List", err)
	}
	return out, nil
}
