// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Rebuilder recomputes leaderboards from submissions.
type Rebuilder interface {
	RebuildAll(ctx context.Context) (int, error)
}

// DirectoryBackfiller repairs the profile directory.
type DirectoryBackfiller interface {
	BackfillDirectory(ctx context.Context) (int, error)
}

// ExpiredStateCleaner removes stale OAuth state tokens.
type ExpiredStateCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// LeaderboardReconcileJob rebuilds every track's leaderboard from the
// submissions, repairing entries left behind when a submission was recorded
// but its leaderboard update failed.
func LeaderboardReconcileJob(lb Rebuilder, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "leaderboard-reconcile",
		Interval: interval,
		Timeout:  10 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := lb.RebuildAll(ctx)
			if err != nil {
				return err
			}
			logger.Info("leaderboards reconciled", zap.Int("entries", n))
			return nil
		},
	}
}

// DirectoryBackfillJob upserts a directory entry for every profile.
func DirectoryBackfillJob(p DirectoryBackfiller, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "profile-directory-backfill",
		Interval: interval,
		Timeout:  10 * time.Minute,
		Run: func(ctx context.Context) error {
			n, err := p.BackfillDirectory(ctx)
			if err != nil {
				return err
			}
			logger.Debug("profile directory backfilled", zap.Int("profiles", n))
			return nil
		},
	}
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(states ExpiredStateCleaner, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			count, err := states.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
