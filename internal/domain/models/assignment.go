// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment kinds.
const (
	KindClasswork = "classwork"
	KindHomework  = "homework"
)

// AssignmentKinds is the set of allowed Assignment.Kind values.
var AssignmentKinds = []string{KindClasswork, KindHomework}

// IsValidKind reports whether k is a known assignment kind.
func IsValidKind(k string) bool {
	for _, v := range AssignmentKinds {
		if v == k {
			return true
		}
	}
	return false
}

// Assignment is created by staff for one track and is immutable afterwards.
type Assignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Track       string             `bson:"track" json:"track"`
	Title       string             `bson:"title" json:"title"`
	Kind        string             `bson:"kind" json:"kind"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedBy   string             `bson:"created_by,omitempty" json:"created_by,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// OpenAt reports whether the assignment still accepts submissions at t.
// Assignments without a deadline never close.
func (a Assignment) OpenAt(t time.Time) bool {
	return a.Deadline == nil || a.Deadline.After(t)
}
