// internal/app/bootstrap/services.go
package bootstrap

import (
	"context"
	"fmt"

	asvc "github.com/dalemusser/internhub/internal/app/services/assignments"
	lbsvc "github.com/dalemusser/internhub/internal/app/services/leaderboard"
	psvc "github.com/dalemusser/internhub/internal/app/services/profiles"
	ssvc "github.com/dalemusser/internhub/internal/app/services/submissions"
	astore "github.com/dalemusser/internhub/internal/app/store/assignments"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	lbstore "github.com/dalemusser/internhub/internal/app/store/leaderboard"
	"github.com/dalemusser/internhub/internal/app/store/oauthstate"
	pstore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/store/submissionindex"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/store/trackstats"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/authz"
	"github.com/dalemusser/internhub/internal/app/system/filestore"
	"github.com/dalemusser/internhub/internal/app/system/lbcache"
	"github.com/dalemusser/internhub/internal/app/system/ratelimit"
	"github.com/dalemusser/internhub/internal/app/system/sheetexport"
	"github.com/dalemusser/internhub/internal/app/system/tasks"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/app/system/txn"
	"go.uber.org/zap"
)

// Services is everything built once at startup and shared by the HTTP
// handlers and the background jobs.
type Services struct {
	Catalog *trackcatalog.Catalog
	Staff   authz.StaffList

	Profiles    *psvc.Service
	Assignments *asvc.Service
	Submissions *ssvc.Service
	Leaderboard *lbsvc.Service

	SubmissionStore *sstore.Store
	SubmissionIndex *submissionindex.Store
	States          *oauthstate.Store
	Files           filestore.Store
	Sheet           *sheetexport.Sheet // nil when the export is not configured
	AuditEvents     *audit.Store
	Audit           *auditlog.Logger

	Limiter   *ratelimit.Limiter
	Scheduler *tasks.Scheduler
}

// build wires stores into services. It does not start anything.
func (s *Services) build(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	catalog, err := trackcatalog.Load(appCfg.TracksFile)
	if err != nil {
		return err
	}
	s.Catalog = catalog
	s.Staff = authz.ParseStaffList(appCfg.StaffEmails)

	var cache lbcache.Cache = lbcache.NewMemory(appCfg.LeaderboardCacheTTL, nil)
	if deps.Redis != nil {
		cache = lbcache.NewRedis(deps.Redis, appCfg.LeaderboardCacheTTL)
	}

	s.SubmissionStore = sstore.New(db)
	s.SubmissionIndex = submissionindex.New(db)
	s.States = oauthstate.New(db)
	s.AuditEvents = audit.New(db)
	s.Audit = auditlog.New(s.AuditEvents, logger, auditlog.Config{
		Auth:  appCfg.AuditAuth,
		Staff: appCfg.AuditStaff,
	})

	s.Profiles = psvc.New(pstore.New(db), catalog, logger)
	s.Assignments = asvc.New(astore.New(db), catalog, logger)
	s.Leaderboard = lbsvc.New(lbsvc.Deps{
		Entries:     lbstore.New(db),
		Stats:       trackstats.New(db),
		Submissions: s.SubmissionStore,
		Cache:       cache,
		Tx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.Run(ctx, db, logger, fn)
		},
		Catalog: catalog,
		Log:     logger,
	})
	s.Submissions = ssvc.New(ssvc.Deps{
		Assignments: astore.New(db),
		Submissions: s.SubmissionStore,
		Index:       s.SubmissionIndex,
		Leaderboard: s.Leaderboard,
		Log:         logger,
	})

	switch appCfg.StorageType {
	case "drive":
		d, err := filestore.NewDrive(ctx, appCfg.DriveCredentialsFile, appCfg.DriveFolderID)
		if err != nil {
			return fmt.Errorf("drive storage: %w", err)
		}
		s.Files = d
	default:
		s.Files = filestore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	}

	if appCfg.SheetsEnabled() {
		sh, err := sheetexport.NewSheet(ctx, appCfg.SheetsCredentialsFile, appCfg.SheetsSpreadsheetID, appCfg.SheetsRange)
		if err != nil {
			return fmt.Errorf("sheets export: %w", err)
		}
		s.Sheet = sh
	}

	s.Limiter = ratelimit.New(appCfg.SubmitRateLimit, appCfg.SubmitRateWindow)
	return nil
}

// jobs lists the periodic maintenance work.
func (s *Services) jobs(appCfg AppConfig, logger *zap.Logger) []tasks.Job {
	return []tasks.Job{
		tasks.LeaderboardReconcileJob(s.Leaderboard, logger, appCfg.ReconcileInterval),
		tasks.DirectoryBackfillJob(s.Profiles, logger, appCfg.BackfillInterval),
		tasks.OAuthStateCleanupJob(s.States, logger),
	}
}
