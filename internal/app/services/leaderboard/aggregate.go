package leaderboard

import (
	"sort"
	"time"

	"github.com/dalemusser/internhub/internal/domain/models"
)

// Sample is one submission's contribution to a leaderboard entry.
type Sample struct {
	StudentID string
	Fields    models.StudentFields
	Latency   int64
	At        time.Time
}

// SampleOf derives the leaderboard sample of a stored submission.
func SampleOf(s models.Submission) Sample {
	return Sample{
		StudentID: s.StudentID,
		Fields:    models.StudentFields{Name: s.StudentName, Email: s.StudentEmail, Institution: s.Institution},
		Latency:   models.ResponseLatency(s.CreatedAt, s.AssignmentCreatedAt),
		At:        s.CreatedAt,
	}
}

// RoundDiv returns sum/n rounded half up. n <= 0 yields 0.
func RoundDiv(sum, n int64) int64 {
	if n <= 0 {
		return 0
	}
	return (2*sum + n) / (2 * n)
}

// Apply folds one sample into e: the incremental path taken on every
// recorded submission.
func Apply(e models.LeaderboardEntry, s Sample) models.LeaderboardEntry {
	if e.StudentID == "" {
		e.StudentID = s.StudentID
	}
	e.Count++
	e.CumulativeSeconds += s.Latency
	e.AverageSeconds = RoundDiv(e.CumulativeSeconds, e.Count)
	if !s.At.Before(e.LastSubmissionAt) {
		e.LastSubmissionAt = s.At
		e.Name, e.Email, e.Institution = s.Fields.Name, s.Fields.Email, s.Fields.Institution
	}
	return e
}

// Aggregate computes every entry of track from scratch: the recompute path.
// The result is in ranking order and does not depend on sample order.
func Aggregate(track string, samples []Sample) []models.LeaderboardEntry {
	byStudent := make(map[string]*models.LeaderboardEntry)
	for _, s := range samples {
		e := byStudent[s.StudentID]
		if e == nil {
			e = &models.LeaderboardEntry{Track: track, StudentID: s.StudentID}
			byStudent[s.StudentID] = e
		}
		e.Count++
		e.CumulativeSeconds += s.Latency
		if s.At.After(e.LastSubmissionAt) || e.Count == 1 {
			e.LastSubmissionAt = s.At
			e.Name, e.Email, e.Institution = s.Fields.Name, s.Fields.Email, s.Fields.Institution
		}
	}
	out := make([]models.LeaderboardEntry, 0, len(byStudent))
	for _, e := range byStudent {
		e.AverageSeconds = RoundDiv(e.CumulativeSeconds, e.Count)
		out = append(out, *e)
	}
	Sort(out)
	return out
}

// Less is the ranking order: lower average first, then more submissions,
// then student id for a stable total order.
func Less(a, b models.LeaderboardEntry) bool {
	if a.AverageSeconds != b.AverageSeconds {
		return a.AverageSeconds < b.AverageSeconds
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.StudentID < b.StudentID
}

// Sort orders entries by Less.
func Sort(entries []models.LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool { return Less(entries[i], entries[j]) })
}
