package testutil

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	lbsvc "github.com/dalemusser/internhub/internal/app/services/leaderboard"
	astore "github.com/dalemusser/internhub/internal/app/store/assignments"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	lbstore "github.com/dalemusser/internhub/internal/app/store/leaderboard"
	pstore "github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/store/submissionindex"
	sstore "github.com/dalemusser/internhub/internal/app/store/submissions"
	"github.com/dalemusser/internhub/internal/app/store/trackstats"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The fakes below are in-memory stand-ins for the Mongo stores, returning
// the same sentinel errors. Setting Fail[method] makes that method return
// the error, for exercising collaborator failures.

type failer struct {
	mu   sync.Mutex
	Fail map[string]error
}

func (f *failer) fail(method string) error {
	if f.Fail == nil {
		return nil
	}
	return f.Fail[method]
}

// FailOn makes method return err from now on.
func (f *failer) FailOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail == nil {
		f.Fail = map[string]error{}
	}
	f.Fail[method] = err
}

/* ------------------------------ profiles ------------------------------ */

type FakeProfiles struct {
	failer
	profiles  map[string]models.Profile // track|student
	directory map[string]string
	Gets      int
}

func NewFakeProfiles() *FakeProfiles {
	return &FakeProfiles{profiles: map[string]models.Profile{}, directory: map[string]string{}}
}

func (f *FakeProfiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Create"); err != nil {
		return models.Profile{}, err
	}
	k := p.Track + "|" + p.StudentID
	if _, ok := f.profiles[k]; ok {
		return models.Profile{}, pstore.ErrDuplicate
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.profiles[k] = p
	return p, nil
}

func (f *FakeProfiles) Get(_ context.Context, track, studentID string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gets++
	if err := f.fail("Get"); err != nil {
		return models.Profile{}, err
	}
	p, ok := f.profiles[track+"|"+studentID]
	if !ok {
		return models.Profile{}, pstore.ErrNotFound
	}
	return p, nil
}

func (f *FakeProfiles) LookupTrack(_ context.Context, studentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("LookupTrack"); err != nil {
		return "", err
	}
	t, ok := f.directory[studentID]
	if !ok {
		return "", pstore.ErrNotFound
	}
	return t, nil
}

func (f *FakeProfiles) PutDirectory(_ context.Context, studentID, track string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("PutDirectory"); err != nil {
		return err
	}
	f.directory[studentID] = track
	return nil
}

func (f *FakeProfiles) ClaimDirectory(_ context.Context, studentID, track string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ClaimDirectory"); err != nil {
		return err
	}
	if _, ok := f.directory[studentID]; ok {
		return pstore.ErrDuplicate
	}
	f.directory[studentID] = track
	return nil
}

func (f *FakeProfiles) ReleaseDirectory(_ context.Context, studentID, track string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ReleaseDirectory"); err != nil {
		return err
	}
	if f.directory[studentID] == track {
		delete(f.directory, studentID)
	}
	return nil
}

func (f *FakeProfiles) Each(_ context.Context, fn func(models.Profile) error) error {
	f.mu.Lock()
	all := make([]models.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		all = append(all, p)
	}
	f.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].StudentID < all[j].StudentID })
	for _, p := range all {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// Directory returns the directory entry for studentID.
func (f *FakeProfiles) Directory(studentID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.directory[studentID]
	return t, ok
}

// Seed stores p without touching the directory.
func (f *FakeProfiles) Seed(p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.Track+"|"+p.StudentID] = p
}

/* ----------------------------- assignments ---------------------------- */

type FakeAssignments struct {
	failer
	items []models.Assignment
}

func NewFakeAssignments() *FakeAssignments { return &FakeAssignments{} }

func (f *FakeAssignments) Create(_ context.Context, a models.Assignment) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Create"); err != nil {
		return models.Assignment{}, err
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	f.items = append(f.items, a)
	return a, nil
}

func (f *FakeAssignments) Get(_ context.Context, track string, id primitive.ObjectID) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Get"); err != nil {
		return models.Assignment{}, err
	}
	for _, a := range f.items {
		if a.ID == id && a.Track == track {
			return a, nil
		}
	}
	return models.Assignment{}, astore.ErrNotFound
}

func (f *FakeAssignments) ListOpen(ctx context.Context, track string, now time.Time) ([]models.Assignment, error) {
	all, err := f.List(ctx, track)
	if err != nil {
		return nil, err
	}
	out := []models.Assignment{}
	for _, a := range all {
		if a.OpenAt(now) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeAssignments) List(_ context.Context, track string) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("List"); err != nil {
		return nil, err
	}
	out := []models.Assignment{}
	for i := len(f.items) - 1; i >= 0; i-- {
		if track == "" || f.items[i].Track == track {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

/* ----------------------------- submissions ---------------------------- */

type FakeSubmissions struct {
	failer
	items []models.Submission
}

func NewFakeSubmissions() *FakeSubmissions { return &FakeSubmissions{} }

// Insert is create-if-absent on (bucket, student_id), like the unique index.
func (f *FakeSubmissions) Insert(_ context.Context, sub models.Submission) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Insert"); err != nil {
		return models.Submission{}, err
	}
	for _, s := range f.items {
		if s.Bucket == sub.Bucket && s.StudentID == sub.StudentID {
			return models.Submission{}, sstore.ErrDuplicate
		}
	}
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	f.items = append(f.items, sub)
	return sub, nil
}

func (f *FakeSubmissions) Find(_ context.Context, bucket, studentID string) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Find"); err != nil {
		return models.Submission{}, err
	}
	for _, s := range f.items {
		if s.Bucket == bucket && s.StudentID == studentID {
			return s, nil
		}
	}
	return models.Submission{}, sstore.ErrNotFound
}

func (f *FakeSubmissions) ListByStudent(_ context.Context, track, studentID string) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListByStudent"); err != nil {
		return nil, err
	}
	out := []models.Submission{}
	for i := len(f.items) - 1; i >= 0; i-- {
		if s := f.items[i]; s.Track == track && s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeSubmissions) EachByTrack(_ context.Context, track string, fn func(models.Submission) error) error {
	f.mu.Lock()
	if err := f.fail("EachByTrack"); err != nil {
		f.mu.Unlock()
		return err
	}
	var rows []models.Submission
	for _, s := range f.items {
		if s.Track == track {
			rows = append(rows, s)
		}
	}
	f.mu.Unlock()
	for _, s := range rows {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// All returns a copy of every stored submission.
func (f *FakeSubmissions) All() []models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Submission(nil), f.items...)
}

// newestFirst returns the submissions matching f ordered by (created_at, id) descending.
func (f *FakeSubmissions) newestFirst(flt sstore.Filter) []models.Submission {
	needle := strings.ToLower(strings.TrimSpace(flt.Search))
	var out []models.Submission
	for _, s := range f.items {
		if flt.Track != "" && s.Track != flt.Track {
			continue
		}
		if flt.Kind != "" && s.Kind != flt.Kind {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.StudentName), needle) &&
			!strings.Contains(strings.ToLower(s.StudentEmail), needle) &&
			!strings.Contains(strings.ToLower(s.Title), needle) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (f *FakeSubmissions) List(_ context.Context, flt sstore.Filter) ([]models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("List"); err != nil {
		return nil, err
	}
	out := []models.Submission{}
	for _, s := range f.newestFirst(flt) {
		if c := flt.After; c != nil {
			if s.CreatedAt.After(c.At) || (s.CreatedAt.Equal(c.At) && s.ID.Hex() >= c.ID.Hex()) {
				continue
			}
		}
		out = append(out, s)
		if flt.Limit > 0 && int64(len(out)) == flt.Limit {
			break
		}
	}
	return out, nil
}

func (f *FakeSubmissions) Each(_ context.Context, flt sstore.Filter, fn func(models.Submission) error) error {
	f.mu.Lock()
	if err := f.fail("Each"); err != nil {
		f.mu.Unlock()
		return err
	}
	rows := f.newestFirst(flt)
	f.mu.Unlock()
	for _, s := range rows {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *FakeSubmissions) Summarize(_ context.Context, since time.Time) (sstore.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Summarize"); err != nil {
		return sstore.Summary{}, err
	}
	var out sstore.Summary
	for _, s := range f.items {
		out.Total++
		switch s.Kind {
		case models.KindClasswork:
			out.Classwork++
		case models.KindHomework:
			out.Homework++
		}
		if !s.CreatedAt.Before(since) {
			out.Recent++
		}
	}
	return out, nil
}

func (f *FakeSubmissions) GroupByStudent(_ context.Context, track string) ([]sstore.StudentGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GroupByStudent"); err != nil {
		return nil, err
	}
	byID := map[string]*sstore.StudentGroup{}
	for _, s := range f.newestFirst(sstore.Filter{Track: track}) {
		g := byID[s.StudentID]
		if g == nil {
			g = &sstore.StudentGroup{
				StudentID:    s.StudentID,
				Name:         s.StudentName,
				Email:        s.StudentEmail,
				Institution:  s.Institution,
				Track:        s.Track,
				LastSubmitAt: s.CreatedAt,
			}
			byID[s.StudentID] = g
		}
		g.Count++
	}
	out := []sstore.StudentGroup{}
	for _, g := range byID {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSubmitAt.Equal(out[j].LastSubmitAt) {
			return out[i].LastSubmitAt.After(out[j].LastSubmitAt)
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out, nil
}

/* --------------------------- submission index ------------------------- */

type FakeIndex struct {
	failer
	keys map[string][]string
}

func NewFakeIndex() *FakeIndex { return &FakeIndex{keys: map[string][]string{}} }

func (f *FakeIndex) Append(_ context.Context, track, studentID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Append"); err != nil {
		return err
	}
	k := track + "|" + studentID
	for _, have := range f.keys[k] {
		if have == key {
			return nil
		}
	}
	f.keys[k] = append(f.keys[k], key)
	return nil
}

func (f *FakeIndex) Get(_ context.Context, track, studentID string) (models.SubmissionIndex, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Get"); err != nil {
		return models.SubmissionIndex{}, err
	}
	keys, ok := f.keys[track+"|"+studentID]
	if !ok {
		return models.SubmissionIndex{}, submissionindex.ErrNotFound
	}
	return models.SubmissionIndex{Track: track, StudentID: studentID, Keys: append([]string(nil), keys...)}, nil
}

/* ----------------------------- leaderboard ---------------------------- */

type FakeLeaderboard struct {
	failer
	entries map[string]models.LeaderboardEntry // track|student
}

func NewFakeLeaderboard() *FakeLeaderboard {
	return &FakeLeaderboard{entries: map[string]models.LeaderboardEntry{}}
}

func (f *FakeLeaderboard) Record(_ context.Context, track, studentID string, latency int64, fields models.StudentFields, at time.Time) (models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Record"); err != nil {
		return models.LeaderboardEntry{}, err
	}
	k := track + "|" + studentID
	e, ok := f.entries[k]
	if !ok {
		e = models.LeaderboardEntry{Track: track, StudentID: studentID, CreatedAt: at}
	}
	e = lbsvc.Apply(e, lbsvc.Sample{StudentID: studentID, Fields: fields, Latency: latency, At: at})
	e.UpdatedAt = at
	f.entries[k] = e
	return e, nil
}

func (f *FakeLeaderboard) Get(_ context.Context, track, studentID string) (models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[track+"|"+studentID]
	if !ok {
		return models.LeaderboardEntry{}, lbstore.ErrNotFound
	}
	return e, nil
}

func (f *FakeLeaderboard) track(track string) []models.LeaderboardEntry {
	out := []models.LeaderboardEntry{}
	for _, e := range f.entries {
		if e.Track == track {
			out = append(out, e)
		}
	}
	lbsvc.Sort(out)
	return out
}

func (f *FakeLeaderboard) Top(_ context.Context, track string, limit int64, after *lbstore.Position) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Top"); err != nil {
		return nil, err
	}
	out := []models.LeaderboardEntry{}
	for _, e := range f.track(track) {
		if after != nil {
			pos := models.LeaderboardEntry{AverageSeconds: after.AverageSeconds, Count: after.Count, StudentID: after.StudentID}
			if !lbsvc.Less(pos, e) {
				continue
			}
		}
		out = append(out, e)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakeLeaderboard) Rank(_ context.Context, track, studentID string) (models.Rank, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Rank"); err != nil {
		return models.Rank{}, err
	}
	me, ok := f.entries[track+"|"+studentID]
	if !ok {
		return models.Rank{}, lbstore.ErrNotFound
	}
	var better, total int64
	for _, e := range f.track(track) {
		if e.Count >= 1 {
			total++
		}
		if e.AverageSeconds < me.AverageSeconds || (e.AverageSeconds == me.AverageSeconds && e.Count > me.Count) {
			better++
		}
	}
	return models.Rank{Track: track, StudentID: studentID, Rank: better + 1, Total: total}, nil
}

func (f *FakeLeaderboard) ComputeStats(_ context.Context, track string) (models.TrackStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ComputeStats"); err != nil {
		return models.TrackStats{}, err
	}
	st := models.TrackStats{Track: track, UpdatedAt: time.Now().UTC()}
	var sumAvg int64
	for _, e := range f.track(track) {
		st.StudentCount++
		st.TotalSubmissions += e.Count
		sumAvg += e.AverageSeconds
	}
	st.AverageSeconds = lbsvc.RoundDiv(sumAvg, st.StudentCount)
	return st, nil
}

func (f *FakeLeaderboard) ReplaceTrack(_ context.Context, track string, entries []models.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ReplaceTrack"); err != nil {
		return err
	}
	for k, e := range f.entries {
		if e.Track == track {
			delete(f.entries, k)
		}
	}
	for _, e := range entries {
		e.Track = track
		f.entries[track+"|"+e.StudentID] = e
	}
	return nil
}

/* ----------------------------- track stats ---------------------------- */

type FakeTrackStats struct {
	failer
	stats map[string]models.TrackStats
	Saves int
}

func NewFakeTrackStats() *FakeTrackStats {
	return &FakeTrackStats{stats: map[string]models.TrackStats{}}
}

func (f *FakeTrackStats) Save(_ context.Context, st models.TrackStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Save"); err != nil {
		return err
	}
	f.Saves++
	f.stats[st.Track] = st
	return nil
}

func (f *FakeTrackStats) Get(_ context.Context, track string) (models.TrackStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Get"); err != nil {
		return models.TrackStats{}, err
	}
	st, ok := f.stats[track]
	if !ok {
		return models.TrackStats{}, trackstats.ErrNotFound
	}
	return st, nil
}

// FakeFiles is an in-memory filestore.Store.
type FakeFiles struct {
	failer
	objects map[string][]byte
}

func NewFakeFiles() *FakeFiles { return &FakeFiles{objects: map[string][]byte{}} }

func (f *FakeFiles) Put(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	if err := f.fail("Put"); err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[name] = b
	return "https://files.example.com/" + name, nil
}

// Objects returns the number of stored objects.
func (f *FakeFiles) Objects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// FakeAudit is an in-memory audit store.
type FakeAudit struct {
	failer
	events []audit.Event
}

func NewFakeAudit() *FakeAudit { return &FakeAudit{} }

func (f *FakeAudit) Log(_ context.Context, e audit.Event) error {
	if err := f.fail("Log"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	f.events = append(f.events, e)
	return nil
}

// Query matches store/audit: newest first, DefaultLimit when unset.
func (f *FakeAudit) Query(_ context.Context, flt audit.QueryFilter) ([]audit.Event, error) {
	if err := f.fail("Query"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []audit.Event{}
	for i := len(f.events) - 1; i >= 0; i-- {
		e := f.events[i]
		if flt.Category != "" && e.Category != flt.Category {
			continue
		}
		if flt.EventType != "" && e.EventType != flt.EventType {
			continue
		}
		if flt.ActorID != "" && e.ActorID != flt.ActorID {
			continue
		}
		if flt.Since != nil && e.Timestamp.Before(*flt.Since) {
			continue
		}
		out = append(out, e)
	}
	limit := flt.Limit
	if limit <= 0 {
		limit = audit.DefaultLimit
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Events returns every logged event in insertion order.
func (f *FakeAudit) Events() []audit.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]audit.Event(nil), f.events...)
}
