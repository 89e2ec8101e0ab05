// Package leaderboard maintains per-track rankings of students by how
// quickly they respond to assignments.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	lbstore "github.com/dalemusser/internhub/internal/app/store/leaderboard"
	"github.com/dalemusser/internhub/internal/app/store/trackstats"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/lbcache"
	"github.com/dalemusser/internhub/internal/app/system/metrics"
	"github.com/dalemusser/internhub/internal/app/system/paging"
	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.uber.org/zap"
)

// EntryStore persists leaderboard entries (store/leaderboard).
type EntryStore interface {
	Record(ctx context.Context, track, studentID string, latency int64, f models.StudentFields, at time.Time) (models.LeaderboardEntry, error)
	Top(ctx context.Context, track string, limit int64, after *lbstore.Position) ([]models.LeaderboardEntry, error)
	Rank(ctx context.Context, track, studentID string) (models.Rank, error)
	ComputeStats(ctx context.Context, track string) (models.TrackStats, error)
	ReplaceTrack(ctx context.Context, track string, entries []models.LeaderboardEntry) error
}

// StatsStore persists track rollups (store/trackstats).
type StatsStore interface {
	Save(ctx context.Context, st models.TrackStats) error
	Get(ctx context.Context, track string) (models.TrackStats, error)
}

// SubmissionSource streams a track's submissions for recompute.
type SubmissionSource interface {
	EachByTrack(ctx context.Context, track string, fn func(models.Submission) error) error
}

// TxRunner runs fn atomically where the database allows it.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Deps wires a Service.
type Deps struct {
	Entries     EntryStore
	Stats       StatsStore
	Submissions SubmissionSource
	Cache       lbcache.Cache // nil disables caching
	Tx          TxRunner      // nil runs without a transaction
	Catalog     *trackcatalog.Catalog
	Log         *zap.Logger
	Now         func() time.Time
}

// Service is the leaderboard aggregator.
type Service struct {
	entries EntryStore
	stats   StatsStore
	subs    SubmissionSource
	cache   lbcache.Cache
	tx      TxRunner
	catalog *trackcatalog.Catalog
	log     *zap.Logger
	now     func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		entries: d.Entries,
		stats:   d.Stats,
		subs:    d.Submissions,
		cache:   d.Cache,
		tx:      d.Tx,
		catalog: d.Catalog,
		log:     d.Log,
		now:     d.Now,
	}
	if s.catalog == nil {
		s.catalog = trackcatalog.Default()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tx == nil {
		s.tx = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	return s
}

// Page is one "load more" slice of a leaderboard.
type Page struct {
	Entries []models.LeaderboardEntry `json:"entries"`
	Next    string                    `json:"next,omitempty"`
}

func (s *Service) checkTrack(op, track string) error {
	if !s.catalog.Contains(track) {
		return apperr.Validation(op, map[string]string{"track": "unknown track"})
	}
	return nil
}

// RecordResponse folds one latency sample into the student's entry, then
// refreshes the track rollup and drops cached reads for the track.
func (s *Service) RecordResponse(ctx context.Context, track, studentID string, latency int64, f models.StudentFields, at time.Time) (models.LeaderboardEntry, error) {
	const op = "leaderboard.RecordResponse"
	if err := s.checkTrack(op, track); err != nil {
		return models.LeaderboardEntry{}, err
	}
	if studentID == "" {
		return models.LeaderboardEntry{}, apperr.Validation(op, map[string]string{"student_id": "student id is required"})
	}
	if latency < models.MinLatencySeconds || latency > models.MaxLatencySeconds {
		return models.LeaderboardEntry{}, apperr.Validation(op, map[string]string{"latency": "latency out of range"})
	}

	e, err := s.entries.Record(ctx, track, studentID, latency, f, at)
	if err != nil {
		return models.LeaderboardEntry{}, apperr.Unavailable(op, err)
	}
	s.refreshStats(ctx, track)
	s.invalidate(ctx, track)
	return e, nil
}

// TopStudents returns up to n entries of track in ranking order.
func (s *Service) TopStudents(ctx context.Context, track string, n int) ([]models.LeaderboardEntry, error) {
	const op = "leaderboard.TopStudents"
	if err := s.checkTrack(op, track); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, apperr.Validation(op, map[string]string{"n": "n must be positive"})
	}

	key := "top:" + strconv.Itoa(n)
	var out []models.LeaderboardEntry
	fill, hit := s.cacheGet(ctx, track, key, &out)
	if hit {
		return out, nil
	}
	out, err := s.entries.Top(ctx, track, int64(n), nil)
	if err != nil {
		return nil, apperr.Unavailable(op, err)
	}
	fill(out)
	return out, nil
}

// TopStudentsPage returns the n entries following cursor ("" for the first
// page) and the cursor of the next page, if any.
func (s *Service) TopStudentsPage(ctx context.Context, track string, n int, cursor string) (Page, error) {
	const op = "leaderboard.TopStudentsPage"
	if err := s.checkTrack(op, track); err != nil {
		return Page{}, err
	}
	if n <= 0 {
		return Page{}, apperr.Validation(op, map[string]string{"n": "n must be positive"})
	}
	if n > paging.MaxPageSize {
		n = paging.MaxPageSize
	}

	var rows []models.LeaderboardEntry
	var err error
	if cursor == "" {
		rows, err = s.TopStudents(ctx, track, n+1)
		if err != nil {
			return Page{}, err
		}
		rows = append([]models.LeaderboardEntry(nil), rows...)
	} else {
		pos, ok := decodeCursor(cursor)
		if !ok {
			return Page{}, apperr.Validation(op, map[string]string{"after": "invalid cursor"})
		}
		rows, err = s.entries.Top(ctx, track, paging.LimitPlusOne(n), &pos)
		if err != nil {
			return Page{}, apperr.Unavailable(op, err)
		}
	}

	p := Page{Entries: rows}
	if paging.TrimPage(&p.Entries, n) {
		last := p.Entries[len(p.Entries)-1]
		p.Next = encodeCursor(lbstore.PositionOf(last))
	}
	return p, nil
}

func encodeCursor(p lbstore.Position) string {
	return paging.Encode(strconv.FormatInt(p.AverageSeconds, 10), strconv.FormatInt(p.Count, 10), p.StudentID)
}

func decodeCursor(tok string) (lbstore.Position, bool) {
	parts, ok := paging.Decode(tok, 3)
	if !ok {
		return lbstore.Position{}, false
	}
	avg, err1 := strconv.ParseInt(parts[0], 10, 64)
	cnt, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || parts[2] == "" {
		return lbstore.Position{}, false
	}
	return lbstore.Position{AverageSeconds: avg, Count: cnt, StudentID: parts[2]}, true
}

// RankOf returns the student's 1-based rank among the ranked students of track.
func (s *Service) RankOf(ctx context.Context, track, studentID string) (models.Rank, error) {
	const op = "leaderboard.RankOf"
	if err := s.checkTrack(op, track); err != nil {
		return models.Rank{}, err
	}
	r, err := s.entries.Rank(ctx, track, studentID)
	if errors.Is(err, lbstore.ErrNotFound) {
		return models.Rank{}, apperr.New(apperr.KindNotFound, op, "no leaderboard entry yet")
	}
	if err != nil {
		return models.Rank{}, apperr.Unavailable(op, err)
	}
	return r, nil
}

// Stats returns the track rollup: cache, then the persisted document, then a
// fresh aggregation.
func (s *Service) Stats(ctx context.Context, track string) (models.TrackStats, error) {
	const op = "leaderboard.Stats"
	if err := s.checkTrack(op, track); err != nil {
		return models.TrackStats{}, err
	}
	var st models.TrackStats
	fill, hit := s.cacheGet(ctx, track, "stats", &st)
	if hit {
		return st, nil
	}
	st, err := s.stats.Get(ctx, track)
	if errors.Is(err, trackstats.ErrNotFound) {
		st, err = s.entries.ComputeStats(ctx, track)
		if err == nil {
			if serr := s.stats.Save(ctx, st); serr != nil {
				s.log.Warn("save track stats", zap.String("track", track), zap.Error(serr))
			}
		}
	}
	if err != nil {
		return models.TrackStats{}, apperr.Unavailable(op, err)
	}
	fill(st)
	return st, nil
}

// Rebuild recomputes every entry of track from its submissions and replaces
// the stored entries. It returns the number of entries written.
func (s *Service) Rebuild(ctx context.Context, track string) (int, error) {
	const op = "leaderboard.Rebuild"
	if err := s.checkTrack(op, track); err != nil {
		return 0, err
	}
	var samples []Sample
	err := s.subs.EachByTrack(ctx, track, func(sub models.Submission) error {
		samples = append(samples, SampleOf(sub))
		return nil
	})
	if err != nil {
		return 0, apperr.Unavailable(op, err)
	}

	entries := Aggregate(track, samples)
	if err := s.tx(ctx, func(ctx context.Context) error {
		return s.entries.ReplaceTrack(ctx, track, entries)
	}); err != nil {
		return 0, apperr.Unavailable(op, err)
	}
	s.refreshStats(ctx, track)
	s.invalidate(ctx, track)
	s.log.Info("leaderboard rebuilt", zap.String("track", track), zap.Int("entries", len(entries)), zap.Int("submissions", len(samples)))
	return len(entries), nil
}

// RebuildAll rebuilds every catalog track, continuing past failures.
func (s *Service) RebuildAll(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, t := range s.catalog.Names() {
		n, err := s.Rebuild(ctx, t)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

func (s *Service) refreshStats(ctx context.Context, track string) {
	st, err := s.entries.ComputeStats(ctx, track)
	if err == nil {
		st.UpdatedAt = s.now().UTC()
		err = s.stats.Save(ctx, st)
	}
	if err != nil {
		s.log.Warn("refresh track stats", zap.String("track", track), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, track string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrack(ctx, track); err != nil {
		s.log.Warn("leaderboard cache invalidate", zap.String("track", track), zap.Error(err))
	}
}

// cacheGet decodes a cached value into dst. On a miss it returns a fill
// func bound to the generation seen now, so a result read from the store
// after a concurrent invalidation is never cached.
func (s *Service) cacheGet(ctx context.Context, track, key string, dst any) (fill func(v any), hit bool) {
	noop := func(any) {}
	if s.cache == nil {
		return noop, false
	}
	b, gen, ok, err := s.cache.Get(ctx, track, key)
	if err != nil {
		metrics.LeaderboardCache.WithLabelValues("error").Inc()
		s.log.Debug("leaderboard cache get", zap.String("track", track), zap.Error(err))
		return noop, false
	}
	if ok && json.Unmarshal(b, dst) == nil {
		metrics.LeaderboardCache.WithLabelValues("hit").Inc()
		return noop, true
	}
	metrics.LeaderboardCache.WithLabelValues("miss").Inc()
	return func(v any) { s.cacheSet(ctx, track, key, gen, v) }, false
}

func (s *Service) cacheSet(ctx context.Context, track, key string, gen int64, v any) {
	b, err := json.Marshal(v)
	if err == nil {
		err = s.cache.Set(ctx, track, key, gen, b)
	}
	if err != nil {
		s.log.Debug("leaderboard cache set", zap.String("track", track), zap.Error(err))
	}
}
