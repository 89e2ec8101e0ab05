package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/internhub/internal/app/system/apperr"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := apperr.Unavailable("profiles.Resolve", errors.New("connection refused"))
	wrapped := fmt.Errorf("load dashboard: %w", err)

	if !errors.Is(wrapped, apperr.ErrUnavailable) {
		t.Error("expected wrapped error to match ErrUnavailable")
	}
	if errors.Is(wrapped, apperr.ErrProfileNotFound) {
		t.Error("did not expect wrapped error to match ErrProfileNotFound")
	}
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := apperr.Unavailable("op", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"nil", nil, apperr.KindInternal},
		{"plain", errors.New("x"), apperr.KindInternal},
		{"already submitted", apperr.New(apperr.KindAlreadySubmitted, "op", "dup"), apperr.KindAlreadySubmitted},
		{"wrapped validation", fmt.Errorf("ctx: %w", apperr.Validation("op", nil)), apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidation_SingleFieldMessage(t *testing.T) {
	err := apperr.Validation("op", map[string]string{"title": "title is required"})
	if err.Msg != "title is required" {
		t.Errorf("Msg: got %q, want %q", err.Msg, "title is required")
	}
}

func TestKindCodes(t *testing.T) {
	if got := apperr.KindProfileNotFound.Code(); got != "profile_not_found" {
		t.Errorf("got %q", got)
	}
	if got := apperr.Kind(99).Code(); got != "internal" {
		t.Errorf("unknown kind code: got %q, want internal", got)
	}
}
