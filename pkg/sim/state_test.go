package sim

import "testing"

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"active", StateActive},
		{"inactive", StateInactive},
		{"disconnected", StateDisconnected},
		{"", StateDisconnected},
		{"paused", StateDisconnected},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseState(tt.in); got != tt.want {
				t.Errorf("ParseState(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
