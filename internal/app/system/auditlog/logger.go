// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destination settings for a category.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// ValidSetting reports whether s is a destination setting.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth covers sign-in, failed sign-in and sign-out.
	Auth string
	// Staff covers staff actions: assignment creation, rebuilds, backfills, sheet pushes.
	Staff string
}

// Recorder persists events (store/audit).
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to MongoDB and/or zap according to Config.
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.Track != "" {
		fields = append(fields, zap.String("track", event.Track))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event. A nil Logger is a no-op so handlers can run
// without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryStaff:
		setting = l.config.Staff
	default:
		setting = All
	}

	if setting == Off {
		return
	}
	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

// SignIn logs a completed sign-in.
func (l *Logger) SignIn(ctx context.Context, r *http.Request, u auth.SessionUser) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventSignIn,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		IP:         ratelimit.ClientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
		Details:    map[string]string{"role": u.Role},
	})
}

// SignInFailed logs a sign-in that stopped at reason (the /login error code).
func (l *Logger) SignInFailed(ctx context.Context, r *http.Request, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventSignInFailed,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

// SignOut logs a sign-out by the current user.
func (l *Logger) SignOut(ctx context.Context, r *http.Request) {
	e := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignOut,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
	if u, ok := auth.CurrentUser(r); ok {
		e.ActorID, e.ActorEmail = u.ID, u.Email
	}
	l.Log(ctx, e)
}

// StaffAction logs a staff operation performed by the request's user.
func (l *Logger) StaffAction(ctx context.Context, r *http.Request, eventType, track string, details map[string]string) {
	e := audit.Event{
		Category:  audit.CategoryStaff,
		EventType: eventType,
		Track:     track,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   details,
	}
	if u, ok := auth.CurrentUser(r); ok {
		e.ActorID, e.ActorEmail = u.ID, u.Email
	}
	l.Log(ctx, e)
}
