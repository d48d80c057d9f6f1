package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/laag/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Beach day", "Beach day"},
		{"safe markup kept", "<p><strong>Bring</strong> <em>snacks</em></p>", "<p><strong>Bring</strong> <em>snacks</em></p>"},
		{"script removed", "<p>Hi</p><script>alert('x')</script>", "<p>Hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript: href survived: %q", got)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "  see you there  ", "see you there"},
		{"tags removed", "<b>see</b> you <i>there</i>", "see you there"},
		{"script removed", "hello<script>alert(1)</script>", "hello"},
		{"ampersand preserved", "Fish & chips", "Fish & chips"},
		{"quotes preserved", `it's "fine"`, `it's "fine"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
