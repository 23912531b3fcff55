package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short string unchanged", "acme", 10, "acme"},
		{"exact length unchanged", "acme", 4, "acme"},
		{"long string gets ellipsis", "international business machines", 13, "international..."},
		{"zero maxLen returns as-is", "acme", 0, "acme"},
		{"negative maxLen returns as-is", "acme", -1, "acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
