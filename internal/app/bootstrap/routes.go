// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	assignmentsfeature "github.com/dalemusser/internhub/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/internhub/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/internhub/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/internhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/internhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/internhub/internal/app/features/health"
	leaderboardfeature "github.com/dalemusser/internhub/internal/app/features/leaderboard"
	loginfeature "github.com/dalemusser/internhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/internhub/internal/app/features/logout"
	maintenancefeature "github.com/dalemusser/internhub/internal/app/features/maintenance"
	profilefeature "github.com/dalemusser/internhub/internal/app/features/profile"
	reportsfeature "github.com/dalemusser/internhub/internal/app/features/reports"
	submissionsfeature "github.com/dalemusser/internhub/internal/app/features/submissions"
	"github.com/dalemusser/internhub/internal/app/system/auth"
	"github.com/dalemusser/internhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed, so deps.Services is populated. Every route speaks
// JSON; failures carry {"error": {"code", "message", "fields"}}.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.Services
	if svc == nil || svc.Profiles == nil {
		return nil, errors.New("services not initialised; Startup must run first")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Operations
	var cachePing healthfeature.CachePinger
	if deps.Redis != nil {
		cachePing = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cachePing, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Locally stored submission files
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Authentication
	loginHandler := loginfeature.NewHandler(appCfg.GoogleEnabled())
	r.Mount("/login", loginfeature.Routes(loginHandler))

	if appCfg.GoogleEnabled() {
		googleHandler := authgooglefeature.NewHandler(sessionMgr, svc.States, svc.Staff, svc.Audit,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	} else {
		logger.Warn("Google sign-in not configured; /auth/google is disabled")
	}

	logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.Audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Profiles and onboarding
	profileHandler := profilefeature.NewHandler(svc.Profiles, svc.Catalog, errLog, logger)
	r.Mount("/me", profilefeature.MeRoutes(profileHandler, sessionMgr))
	r.Mount("/onboarding", profilefeature.OnboardingRoutes(profileHandler, sessionMgr))
	r.Mount("/tracks", profilefeature.TrackRoutes(profileHandler))

	// Student work
	assignmentsHandler := assignmentsfeature.NewHandler(svc.Assignments, svc.SubmissionIndex, svc.Audit, errLog, logger)
	r.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler, profileHandler, sessionMgr))

	submissionsHandler := submissionsfeature.NewHandler(svc.Submissions, svc.Files, svc.Limiter, errLog, logger)
	r.Mount("/submissions", submissionsfeature.Routes(submissionsHandler, profileHandler, sessionMgr))

	leaderboardHandler := leaderboardfeature.NewHandler(svc.Leaderboard, svc.Profiles, errLog, logger)
	r.Mount("/leaderboard", leaderboardfeature.Routes(leaderboardHandler, profileHandler, sessionMgr))

	// Staff
	r.Mount("/admin/assignments", assignmentsfeature.AdminRoutes(assignmentsHandler, sessionMgr))

	var sheet reportsfeature.Pusher
	if svc.Sheet != nil {
		sheet = svc.Sheet
	}
	reportsHandler := reportsfeature.NewHandler(svc.SubmissionStore, sheet, svc.Catalog, svc.Audit, errLog, logger)
	r.Mount("/admin/submissions", reportsfeature.Routes(reportsHandler, sessionMgr))
	r.With(sessionMgr.RequireRole(auth.RoleStaff)).Get("/admin/submissions.csv", reportsHandler.ServeCSV)

	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, svc.SubmissionStore, errLog, logger)
	r.Mount("/admin/summary", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(svc.AuditEvents, errLog, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	maintenanceHandler := maintenancefeature.NewHandler(svc.Leaderboard, svc.Profiles, svc.Audit, errLog, logger)
	r.Mount("/admin", maintenancefeature.Routes(maintenanceHandler, sessionMgr))

	return r, nil
}
