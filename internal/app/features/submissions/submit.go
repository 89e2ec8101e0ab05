// internal/app/features/submissions/submit.go
package submissions

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/internhub/internal/app/features/errors"
	"github.com/dalemusser/internhub/internal/app/features/profile"
	ssvc "github.com/dalemusser/internhub/internal/app/services/submissions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/filestore"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleSubmit handles POST /submissions, a multipart form with
// assignment_id, an optional description and the file. The attempt is
// checked before the file is stored; Record decides whether it counts.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "submissions.HandleSubmit"
	p, _ := profile.FromRequest(r)

	if h.Limiter != nil {
		allowed := h.Limiter.Allow(p.StudentID)
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(h.Limiter.Remaining(p.StudentID)))
		if !allowed {
			h.ErrLog.Write(w, r, apperr.New(apperr.KindRateLimited, op, "too many submission attempts, try again shortly"))
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		msg := "the form could not be read"
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			msg = "the file is too large"
		}
		h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"file": msg}))
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	plan, err := h.Submissions.Prepare(ctx, p, r.FormValue("assignment_id"))
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil || header.Size == 0 {
		h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"file": "a file is required"}))
		return
	}
	defer file.Close()

	description := strings.TrimSpace(r.FormValue("description"))
	if len(description) > ssvc.MaxDescriptionLen {
		h.ErrLog.Write(w, r, apperr.Validation(op, map[string]string{"description": "description is too long"}))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	link, err := h.Files.Put(ctx, filestore.ObjectName(h.now(), header.Filename), file, contentType)
	if err != nil {
		h.ErrLog.Write(w, r, apperr.Unavailable(op, err))
		return
	}

	sub, err := h.Submissions.Record(ctx, ssvc.Candidate{
		Profile:             p,
		AssignmentID:        plan.Assignment.ID,
		AssignmentCreatedAt: plan.Assignment.CreatedAt,
		Description:         description,
		FileURL:             link,
		FileName:            filestore.SanitizeFilename(header.Filename),
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAlreadySubmitted {
			// Lost the race after upload; the stored object is orphaned.
			h.Log.Warn("duplicate submission after upload",
				zap.String("student_id", p.StudentID), zap.String("bucket", plan.Bucket), zap.String("link", link))
		}
		h.ErrLog.Write(w, r, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, sub)
}
