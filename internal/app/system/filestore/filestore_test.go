package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/filestore"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"my report (final).pdf", "my_report__final_.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\asha\hw.zip`, "hw.zip"},
		{"", "file"},
		{strings.Repeat("a", 150) + ".docx", strings.Repeat("a", 95) + ".docx"},
	}
	for _, tt := range tests {
		if got := filestore.SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObjectName(t *testing.T) {
	name := filestore.ObjectName(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), "hw 1.pdf")
	re := regexp.MustCompile(`^submissions/2025/03/[0-9a-f]{8}-hw_1\.pdf$`)
	if !re.MatchString(name) {
		t.Errorf("ObjectName: got %q", name)
	}
}

func TestLocal_Put(t *testing.T) {
	root := t.TempDir()
	st := filestore.NewLocal(root, "/files/")

	link, err := st.Put(context.Background(), "submissions/2025/03/abcd1234-hw.txt", strings.NewReader("hello"), "text/plain")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if link != "/files/submissions/2025/03/abcd1234-hw.txt" {
		t.Errorf("link: got %q", link)
	}
	b, err := os.ReadFile(filepath.Join(root, "submissions", "2025", "03", "abcd1234-hw.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("content: got %q, want %q", b, "hello")
	}

	if _, err := st.Put(context.Background(), "submissions/2025/03/abcd1234-hw.txt", strings.NewReader("again"), ""); err == nil {
		t.Error("Put over existing object: expected error")
	}
	if _, err := st.Put(context.Background(), "../escape.txt", strings.NewReader("x"), ""); err == nil {
		t.Error("Put outside root: expected error")
	}
}
