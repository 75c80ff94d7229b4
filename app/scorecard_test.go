package app

import (
	"strings"
	"testing"

	"lichess-lens/database"
)

func TestFormScorecardTotal(t *testing.T) {
	sc := NewFormScorecard()
	if sc.Total() != 0 {
		t.Errorf("empty scorecard total = %d, want 0", sc.Total())
	}

	sc.WinRate = 15
	sc.ColorBalance = 10
	sc.TrendSlope = 15
	sc.NetFlow = 10
	sc.ClockLosses = 15
	sc.Abandonments = 10
	sc.Opposition = 15
	sc.Upsets = 10
	if sc.Total() != 100 {
		t.Errorf("max scorecard total = %d, want 100", sc.Total())
	}
	if !sc.InForm() {
		t.Error("max scorecard should be in form")
	}

	if !strings.Contains(sc.String(), "100/100") {
		t.Errorf("String() = %q", sc.String())
	}
}

func TestScoreWinRate(t *testing.T) {
	tests := []struct {
		winRate float64
		want    int
	}{
		{60, 15},
		{55, 15},
		{52, 11},
		{47, 7},
		{40, 0},
	}

	for _, tt := range tests {
		if got := scoreWinRate(tt.winRate); got != tt.want {
			t.Errorf("scoreWinRate(%v) = %d, want %d", tt.winRate, got, tt.want)
		}
	}
}

func TestScoreColorBalance(t *testing.T) {
	colors := []database.ColorStat{
		{Color: "white", WinRate: 52},
		{Color: "black", WinRate: 44},
	}
	if got := scoreColorBalance(colors); got != 6 {
		t.Errorf("8-point gap = %d, want 6", got)
	}

	balanced := []database.ColorStat{
		{Color: "white", WinRate: 50},
		{Color: "black", WinRate: 49},
	}
	if got := scoreColorBalance(balanced); got != 10 {
		t.Errorf("1-point gap = %d, want 10", got)
	}
}

func TestScoreTrendSlope(t *testing.T) {
	trends := []database.RatingTrend{
		{TimeClass: "Blitz", Games: 90, SlopePer100: 30},
		{TimeClass: "Bullet", Games: 10, SlopePer100: -50},
	}
	// Weighted slope: (30*90 - 50*10) / 100 = 22
	if got := scoreTrendSlope(trends); got != 15 {
		t.Errorf("weighted rising slope = %d, want 15", got)
	}

	if got := scoreTrendSlope(nil); got != 5 {
		t.Errorf("no trend data = %d, want neutral 5", got)
	}
}

func TestScoreClockLosses(t *testing.T) {
	terminations := []database.TerminationStat{
		{Termination: "checkmate", SharePct: 60},
		{Termination: "time forfeit", SharePct: 12},
	}
	if got := scoreClockLosses(terminations); got != 5 {
		t.Errorf("12%% time forfeits = %d, want 5", got)
	}

	if got := scoreClockLosses(nil); got != 15 {
		t.Errorf("no time forfeits = %d, want 15", got)
	}
}

func TestScoreOpposition(t *testing.T) {
	entries := []database.CorrelationEntry{
		{TimeClass: "Blitz"}, // per-class rows are skipped
		{
			TimeClass:            "all",
			Samples:              50,
			AvgRatingGap:         -30,
			ScoreAgainstStronger: 0.45,
		},
	}

	opposition, upsets := scoreOpposition(entries)
	if opposition != 15 {
		t.Errorf("opposition = %d, want 15 for stronger schedule", opposition)
	}
	if upsets != 7 {
		t.Errorf("upsets = %d, want 7 for 0.45 vs stronger", upsets)
	}

	opposition, upsets = scoreOpposition(nil)
	if opposition != 3 || upsets != 0 {
		t.Errorf("no data = (%d, %d), want (3, 0)", opposition, upsets)
	}
}
