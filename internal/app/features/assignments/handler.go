// internal/app/features/assignments/handler.go
package assignments

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	asvc "github.com/dalemusser/internhub/internal/app/services/assignments"
	ssvc "github.com/dalemusser/internhub/internal/app/services/submissions"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/store/submissionindex"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/formutil"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Service is the assignment service (services/assignments).
type Service interface {
	Create(ctx context.Context, createdBy string, in asvc.Input) (models.Assignment, error)
	ListOpen(ctx context.Context, track string) ([]models.Assignment, error)
	List(ctx context.Context, track string) ([]models.Assignment, error)
}

// SubmittedKeys reads a student's submission index (store/submissionindex).
type SubmittedKeys interface {
	Get(ctx context.Context, track, studentID string) (models.SubmissionIndex, error)
}

// Handler serves the student assignment list and the staff authoring routes.
type Handler struct {
	Assignments Service
	Submitted   SubmittedKeys // nil leaves every assignment unmarked
	Audit       *auditlog.Logger
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(svc Service, submitted SubmittedKeys, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Assignments: svc, Submitted: submitted, Audit: audit, Log: logger, ErrLog: errLog}
}

type listResponse struct {
	Track       string              `json:"track,omitempty"`
	Assignments []models.Assignment `json:"assignments"`
}

type openAssignment struct {
	models.Assignment
	Submitted bool `json:"submitted"`
}

type openResponse struct {
	Track       string           `json:"track"`
	Assignments []openAssignment `json:"assignments"`
}

// ServeOpen handles GET /assignments: the open assignments of the student's
// track, each marked with whether the student has already submitted it.
func (h *Handler) ServeOpen(w http.ResponseWriter, r *http.Request) {
	p, _ := profile.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Assignments.ListOpen(ctx, p.Track)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	done := h.submittedKeys(ctx, p)
	out := make([]openAssignment, 0, len(list))
	for _, a := range list {
		_, ok := done[ssvc.LocationKey(a.Track, a.ID, a.CreatedAt)]
		out = append(out, openAssignment{Assignment: a, Submitted: ok})
	}
	uierrors.WriteJSON(w, http.StatusOK, openResponse{Track: p.Track, Assignments: out})
}

// submittedKeys is best effort: the index only decorates the list.
func (h *Handler) submittedKeys(ctx context.Context, p models.Profile) map[string]struct{} {
	done := map[string]struct{}{}
	if h.Submitted == nil {
		return done
	}
	idx, err := h.Submitted.Get(ctx, p.Track, p.StudentID)
	if err != nil {
		if !errors.Is(err, submissionindex.ErrNotFound) {
			h.Log.Warn("read submission index", zap.String("student_id", p.StudentID), zap.Error(err))
		}
		return done
	}
	for _, k := range idx.Keys {
		done[k] = struct{}{}
	}
	return done
}

// ServeAdminList handles GET /admin/assignments?track=.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	track := query.Get(r, "track")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Assignments.List(ctx, track)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Track: track, Assignments: list})
}

// HandleCreate handles POST /admin/assignments.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in asvc.Input
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Assignments.Create(ctx, u.ID, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	h.Audit.StaffAction(r.Context(), r, audit.EventAssignmentCreated, a.Track, map[string]string{
		"assignment_id": a.ID.Hex(),
		"title":         a.Title,
	})
	uierrors.WriteJSON(w, http.StatusCreated, a)
}
