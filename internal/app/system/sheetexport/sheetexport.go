// Package sheetexport shapes submissions into spreadsheet rows and pushes
// them to Google Sheets.
package sheetexport

import (
	"context"
	"fmt"

	"github.com/dalemusser/internhub/internal/app/system/csvutil"
	"github.com/dalemusser/internhub/internal/domain/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const dateLayout = "2006-01-02 15:04:05"

// Header is the column row shared by the CSV export and the sheet push.
var Header = []string{"Date", "Student Name", "Email", "Institution", "Track", "Kind", "Title", "File Link"}

// Row renders one submission in Header order.
func Row(s models.Submission) []string {
	return []string{
		s.CreatedAt.UTC().Format(dateLayout),
		s.StudentName,
		s.StudentEmail,
		s.Institution,
		s.Track,
		s.Kind,
		s.Title,
		s.FileURL,
	}
}

// Sheet overwrites a fixed range of one spreadsheet.
type Sheet struct {
	svc           *sheets.Service
	spreadsheetID string
	rng           string
}

// NewSheet builds a Sheets client from a service-account credentials file.
// rng is an A1 range such as "Submissions!A1".
func NewSheet(ctx context.Context, credentialsFile, spreadsheetID, rng string) (*Sheet, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if rng == "" {
		rng = "Submissions!A1"
	}
	return &Sheet{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

// Push clears the range and writes the header followed by rows.
func (s *Sheet) Push(ctx context.Context, rows [][]string) (int, error) {
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, s.rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("failed to clear range: %w", err)
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.rng, &sheets.ValueRange{Values: Values(rows)}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to update range: %w", err)
	}
	return len(rows), nil
}

// Values converts rows (header first) to the Sheets value grid. Cells are
// sanitized the same way as the CSV export.
func Values(rows [][]string) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	hdr := make([]interface{}, len(Header))
	for i, h := range Header {
		hdr[i] = h
	}
	out = append(out, hdr)
	for _, r := range rows {
		row := make([]interface{}, len(r))
		for i, c := range r {
			row[i] = csvutil.SanitizeField(c)
		}
		out = append(out, row)
	}
	return out
}
