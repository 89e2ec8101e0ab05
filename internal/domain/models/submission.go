// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionStatusSubmitted is the only status a submission takes.
const SubmissionStatusSubmitted = "submitted"

// Submission is one student's answer to one assignment instance.
// (bucket, student_id) is unique: Bucket is the location key shared by every
// student's submission for the same assignment instance.
type Submission struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Bucket              string             `bson:"bucket" json:"bucket"`
	Track               string             `bson:"track" json:"track"`
	StudentID           string             `bson:"student_id" json:"student_id"`
	StudentName         string             `bson:"student_name" json:"student_name"`
	StudentEmail        string             `bson:"student_email" json:"student_email"`
	Institution         string             `bson:"institution" json:"institution"`
	AssignmentID        primitive.ObjectID `bson:"assignment_id" json:"assignment_id"`
	AssignmentCreatedAt time.Time          `bson:"assignment_created_at" json:"assignment_created_at"`
	Title               string             `bson:"title" json:"title"`
	Kind                string             `bson:"kind" json:"kind"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	FileURL             string             `bson:"file_url" json:"file_url"`
	FileName            string             `bson:"file_name,omitempty" json:"file_name,omitempty"`
	Status              string             `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
}

// SubmissionIndex lists the location keys of a student's submissions in a track.
type SubmissionIndex struct {
	Track     string    `bson:"track" json:"track"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Keys      []string  `bson:"keys" json:"keys"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Response latency bounds, in seconds.
const (
	MinLatencySeconds int64 = 1
	MaxLatencySeconds int64 = 86400
)

// ResponseLatency is the whole seconds from assignment creation to
// submission, clamped to [MinLatencySeconds, MaxLatencySeconds]. Clock skew
// that puts the submission before the assignment yields the minimum.
func ResponseLatency(submittedAt, assignmentCreatedAt time.Time) int64 {
	secs := int64(submittedAt.Sub(assignmentCreatedAt) / time.Second)
	if secs < MinLatencySeconds {
		return MinLatencySeconds
	}
	if secs > MaxLatencySeconds {
		return MaxLatencySeconds
	}
	return secs
}
