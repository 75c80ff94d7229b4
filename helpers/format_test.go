package helpers

import "testing"

func TestFormatScore(t *testing.T) {
	if got := FormatScore(12, 5, 3); got != "+12 -5 =3" {
		t.Errorf("FormatScore(12, 5, 3) = %q", got)
	}
	if got := FormatScore(0, 0, 0); got != "+0 -0 =0" {
		t.Errorf("FormatScore(0, 0, 0) = %q", got)
	}
}

func TestFormatWinRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{52.38, "52.4%"},
		{0, "0.0%"},
		{100, "100.0%"},
	}

	for _, tt := range tests {
		if got := FormatWinRate(tt.rate); got != tt.want {
			t.Errorf("FormatWinRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestFormatRatingChange(t *testing.T) {
	tests := []struct {
		delta int
		want  string
	}{
		{8, "+8"},
		{-8, "-8"},
		{0, "±0"},
	}

	for _, tt := range tests {
		if got := FormatRatingChange(tt.delta); got != tt.want {
			t.Errorf("FormatRatingChange(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
