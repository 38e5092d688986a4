package utils

import "testing"

func TestCondChain(t *testing.T) {
	tests := []struct {
		a, b bool
		want string
	}{
		{true, true, "a"},
		{false, true, "b"},
		{false, false, "else"},
	}
	for _, tt := range tests {
		if got := If(tt.a, "a").ElseIf(tt.b, "b").Else("else"); got != tt.want {
			t.Errorf("If(%v).ElseIf(%v) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
