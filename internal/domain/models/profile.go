// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the extended record a student fills in once during onboarding.
// Profiles are partitioned by track; (track, student_id) is unique.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   string             `bson:"student_id" json:"student_id"` // identity provider subject id
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Institution string             `bson:"institution" json:"institution"`
	Track       string             `bson:"track" json:"track"`
	Email       string             `bson:"email" json:"email"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// DirectoryEntry maps a student to the track partition that holds their profile.
type DirectoryEntry struct {
	StudentID string    `bson:"student_id" json:"student_id"`
	Track     string    `bson:"track" json:"track"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StudentFields is the subset of a profile copied onto submissions and
// leaderboard entries.
type StudentFields struct {
	Name        string `bson:"name" json:"name"`
	Email       string `bson:"email" json:"email"`
	Institution string `bson:"institution" json:"institution"`
}

// Fields returns the profile fields snapshotted onto dependent records.
func (p Profile) Fields() StudentFields {
	return StudentFields{Name: p.Name, Email: p.Email, Institution: p.Institution}
}
