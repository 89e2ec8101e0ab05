// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/internhub/internal/app/system/tasks"
	"github.com/dalemusser/internhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: it
// applies timeouts, builds the services and starts the job scheduler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Debug("timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	svc := deps.Services
	if err := svc.build(ctx, appCfg, deps, logger); err != nil {
		logger.Error("service wiring failed", zap.Error(err))
		return err
	}
	logger.Info("services ready",
		zap.Strings("tracks", svc.Catalog.Names()),
		zap.Int("staff_emails", len(svc.Staff)),
		zap.String("storage", appCfg.StorageType),
		zap.Bool("shared_cache", deps.Redis != nil),
		zap.Bool("sheets_export", svc.Sheet != nil))

	// Jobs outlive the startup context; Shutdown stops them.
	svc.Scheduler = tasks.NewScheduler(context.Background(), logger)
	if err := svc.Scheduler.Add(svc.jobs(appCfg, logger)...); err != nil {
		return err
	}
	svc.Scheduler.Start()
	return nil
}
