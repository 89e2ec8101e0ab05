// Package formutil decodes request bodies into the input structs the
// services validate.
//
// Example usage:
//
//	var in profiles.OnboardInput
//	if err := formutil.DecodeJSON(w, r, &in); err != nil {
//		h.ErrLog.Write(w, r, err)
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
)

// MaxJSONBody bounds JSON request bodies.
const MaxJSONBody = 1 << 20

// DecodeJSON reads a single JSON object from r into dst. Unknown fields,
// trailing data and oversized bodies are validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	const op = "formutil.DecodeJSON"
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return apperr.Validation(op, map[string]string{"body": "content type must be application/json"})
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return apperr.Validation(op, map[string]string{"body": "request body is too large"})
		case errors.Is(err, io.EOF):
			return apperr.Validation(op, map[string]string{"body": "request body is empty"})
		default:
			return apperr.Wrapf(apperr.KindValidation, op, err, "request body must be a valid JSON object")
		}
	}
	if dec.More() {
		return apperr.Validation(op, map[string]string{"body": "request body must contain a single JSON object"})
	}
	return nil
}
