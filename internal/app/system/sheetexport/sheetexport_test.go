package sheetexport_test

import (
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/sheetexport"
	"github.com/dalemusser/internhub/internal/domain/models"
)

func TestRowAndValues(t *testing.T) {
	sub := models.Submission{
		StudentName:  "Asha",
		StudentEmail: "asha@example.com",
		Institution:  "UNILAG",
		Track:        "Web Development",
		Kind:         models.KindHomework,
		Title:        "=cmd",
		FileURL:      "https://drive.google.com/file/d/abc/view",
		CreatedAt:    time.Date(2025, 1, 1, 9, 1, 30, 0, time.FixedZone("WAT", 3600)),
	}
	row := sheetexport.Row(sub)
	if len(row) != len(sheetexport.Header) {
		t.Fatalf("row width: got %d, want %d", len(row), len(sheetexport.Header))
	}
	if row[0] != "2025-01-01 08:01:30" {
		t.Errorf("date: got %q", row[0])
	}

	vals := sheetexport.Values([][]string{row})
	if len(vals) != 2 {
		t.Fatalf("values: got %d rows, want 2", len(vals))
	}
	if vals[0][0] != "Date" {
		t.Errorf("header: got %v", vals[0][0])
	}
	if vals[1][6] != "'=cmd" {
		t.Errorf("title cell: got %v, want sanitized", vals[1][6])
	}
}
