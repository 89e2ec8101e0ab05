package trackcatalog_test

import (
	"testing"

	"github.com/dalemusser/internhub/internal/app/system/trackcatalog"
)

func TestDefault(t *testing.T) {
	c := trackcatalog.Default()
	names := c.Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 default tracks, got %d", len(names))
	}
	if !c.Contains("Web Development") {
		t.Error("expected Web Development in default catalog")
	}
	if c.Contains("web development") {
		t.Error("track names are case-sensitive")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[[tracks]]
name = "Cloud Engineering"

[[tracks]]
name = "  Data Analysis "

[[tracks]]
name = "Cloud Engineering"
`)
	c, err := trackcatalog.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	names := c.Names()
	want := []string{"Cloud Engineering", "Data Analysis"}
	if len(names) != len(want) {
		t.Fatalf("names: got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := trackcatalog.Parse([]byte("")); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Data Analysis", "Data_Analysis"},
		{"Mobile Application Development", "Mobile_Application_Development"},
		{"  Web \t Development ", "Web_Development"},
		{"Solo", "Solo"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := trackcatalog.Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
