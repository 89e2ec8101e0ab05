// internal/domain/models/leaderboard.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeaderboardEntry is the rolling per-student aggregate for one track.
// It is a cache over submissions and can be rebuilt from them.
type LeaderboardEntry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Track             string             `bson:"track" json:"track"`
	StudentID         string             `bson:"student_id" json:"student_id"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Institution       string             `bson:"institution" json:"institution"`
	Count             int64              `bson:"count" json:"count"`
	CumulativeSeconds int64              `bson:"cumulative_seconds" json:"cumulative_seconds"`
	AverageSeconds    int64              `bson:"average_seconds" json:"average_seconds"`
	LastSubmissionAt  time.Time          `bson:"last_submission_at" json:"last_submission_at"`
	CreatedAt         time.Time          `bson:"created_at" json:"-"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// TrackStats is the rollup of all leaderboard entries in a track.
type TrackStats struct {
	Track            string    `bson:"track" json:"track"`
	StudentCount     int64     `bson:"student_count" json:"student_count"`
	TotalSubmissions int64     `bson:"total_submissions" json:"total_submissions"`
	AverageSeconds   int64     `bson:"average_seconds" json:"average_seconds"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// Rank is a student's 1-based position among Total ranked students.
type Rank struct {
	Track     string `json:"track"`
	StudentID string `json:"student_id"`
	Rank      int64  `json:"rank"`
	Total     int64  `json:"total"`
}
