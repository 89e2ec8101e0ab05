// internal/app/system/csvutil/csvutil.go
package csvutil

import (
	"encoding/csv"
	"io"
)

// MaxExportRows caps a single CSV export.
const MaxExportRows = 50000

var bom = []byte{0xEF, 0xBB, 0xBF}

// Writer emits spreadsheet-friendly CSV: UTF-8 BOM, CRLF line endings and
// formula-injection-safe cells.
type Writer struct {
	cw *csv.Writer
}

// NewWriter writes the BOM to w and returns a Writer.
func NewWriter(w io.Writer) (*Writer, error) {
	if _, err := w.Write(bom); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &Writer{cw: cw}, nil
}

// Write writes one sanitized record.
func (w *Writer) Write(rec []string) error {
	out := make([]string, len(rec))
	for i, f := range rec {
		out[i] = SanitizeField(f)
	}
	return w.cw.Write(out)
}

// Flush flushes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// SanitizeField prevents CSV formula injection.
func SanitizeField(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
