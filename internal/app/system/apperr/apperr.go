// Package apperr defines the error kinds surfaced to users of the portal.
//
// Services return *Error values; handlers map the Kind to an HTTP status and
// a stable code. Match kinds with errors.Is against the sentinels:
//
//	if errors.Is(err, apperr.ErrProfileNotFound) { ... }
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for presentation.
type Kind int

const (
	KindInternal Kind = iota
	KindUnavailable
	KindProfileNotFound
	KindAssignmentNotFound
	KindAlreadySubmitted
	KindValidation
	KindConflict
	KindNotFound
	KindRateLimited
)

var kindCodes = map[Kind]string{
	KindInternal:           "internal",
	KindUnavailable:        "collaborator_unavailable",
	KindProfileNotFound:    "profile_not_found",
	KindAssignmentNotFound: "assignment_not_found",
	KindAlreadySubmitted:   "already_submitted",
	KindValidation:         "validation_error",
	KindConflict:           "conflict",
	KindNotFound:           "not_found",
	KindRateLimited:        "rate_limited",
}

// Code returns the stable machine-readable code for k.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInternal]
}

func (k Kind) String() string { return k.Code() }

// Error is a classified error. Op names the failing operation, Msg is safe to
// show to users, Fields carries per-field validation messages.
type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Code())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnavailable        = &Error{Kind: KindUnavailable}
	ErrProfileNotFound    = &Error{Kind: KindProfileNotFound}
	ErrAssignmentNotFound = &Error{Kind: KindAssignmentNotFound}
	ErrAlreadySubmitted   = &Error{Kind: KindAlreadySubmitted}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
)

// New builds a classified error with a user-facing message.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Unavailable wraps a collaborator failure (database, storage, identity).
func Unavailable(op string, err error) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Msg: "service temporarily unavailable, please retry", Err: err}
}

// Validation builds a validation error with optional per-field messages.
func Validation(op string, fields map[string]string) *Error {
	msg := "some fields are missing or invalid"
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	}
	return &Error{Kind: KindValidation, Op: op, Msg: msg, Fields: fields}
}

// Wrapf attaches kind and op to err with a formatted user message.
func Wrapf(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
