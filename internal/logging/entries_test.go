// pattern: Functional Core

package logging

import "testing"

func TestLogEntry_MatchesScope(t *testing.T) {
	entry := LogEntry{Scope: "watch.instance"}

	tests := []struct {
		prefix string
		want   bool
	}{
		{"", true},
		{"watch", true},
		{"watch.instance", true},
		{"resolver", false},
		{"watch.instance.extra", false},
	}

	for _, tt := range tests {
		if got := entry.MatchesScope(tt.prefix); got != tt.want {
			t.Errorf("MatchesScope(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestLogEntry_Field(t *testing.T) {
	entry := LogEntry{Fields: map[string]any{"inspected": float64(3), "marker": "", "nil": nil}}

	if got := entry.Field("inspected"); got != "3" {
		t.Errorf("Field(inspected) = %q, want %q", got, "3")
	}
	if got := entry.Field("missing"); got != "" {
		t.Errorf("Field(missing) = %q, want empty", got)
	}
	if got := entry.Field("nil"); got != "" {
		t.Errorf("Field(nil) = %q, want empty", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "Info", "warn", "ERROR"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"warning", "trace", "loud"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true, want false", level)
		}
	}
}
