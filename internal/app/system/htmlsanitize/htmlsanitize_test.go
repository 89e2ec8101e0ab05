package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/internhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Preserves(t *testing.T) {
	tests := []string{
		"",
		"Hello, World!",
		"<p><strong>Bold</strong> and <em>italic</em></p>",
		"<ul><li>Item 1</li><li>Item 2</li></ul>",
		"<pre><code>func main() {}</code></pre>",
		"<u>underline</u> <s>strike</s> <mark>mark</mark>",
	}
	for _, in := range tests {
		if got := htmlsanitize.Sanitize(in); got != in {
			t.Errorf("Sanitize(%q): got %q", in, got)
		}
	}
}

func TestSanitize_Strips(t *testing.T) {
	tests := []struct {
		name, in, banned string
	}{
		{"script", "<p>Hello</p><script>alert('xss')</script>", "script"},
		{"onclick", `<button onclick="alert('xss')">Click</button>`, "onclick"},
		{"onerror", `<img src="x" onerror="alert('xss')">`, "onerror"},
		{"javascript href", `<a href="javascript:alert('xss')">Click</a>`, "javascript:"},
		{"iframe", `<p>Content</p><iframe src="https://evil.example"></iframe>`, "iframe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.in)
			if strings.Contains(got, tt.banned) {
				t.Errorf("Sanitize: %q still contains %q", got, tt.banned)
			}
		})
	}
}

func TestSanitize_KeepsTableClass(t *testing.T) {
	got := htmlsanitize.Sanitize(`<table class="grid"><tr><td colspan="2">x</td></tr></table>`)
	if !strings.Contains(got, `class="grid"`) || !strings.Contains(got, `colspan="2"`) {
		t.Errorf("Sanitize: got %q", got)
	}
}

func TestPlain(t *testing.T) {
	if got := htmlsanitize.Plain("<b>Done</b> & pushed <script>x()</script>"); got != "Done & pushed" {
		t.Errorf("Plain: got %q, want %q", got, "Done & pushed")
	}
}
