package llm

import (
	"strings"
	"testing"

	"lichess-lens/database"
)

func TestFormatInsightsPrompt(t *testing.T) {
	prompt := FormatInsightsPrompt(InsightsInput{
		Username: "tester",
		Overall: database.OverallStat{
			TotalGames: 100,
			Wins:       50, Losses: 40, Draws: 10,
			WinRate:      50,
			PeakRating:   1800,
			RatingGained: 120, RatingLost: 90,
		},
		Colors: []database.ColorStat{
			{Color: "white", TotalGames: 52, Wins: 30, Losses: 18, Draws: 4, WinRate: 57.7},
		},
		Openings: []database.OpeningStat{
			{OpeningName: "Sicilian Defense", TotalGames: 20, Wins: 8, Losses: 10, Draws: 2, WinRate: 40},
		},
		Terminations: []database.TerminationStat{
			{Termination: "time forfeit", TotalGames: 15, SharePct: 15, Wins: 3, Losses: 12},
		},
	})

	for _, want := range []string{
		"Player: tester",
		"+50 -40 =10",
		"net +30",
		"white: 52 games",
		"Sicilian Defense",
		"time forfeit",
		"three biggest leaks",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFormatInsightsPromptCapsOpenings(t *testing.T) {
	openings := make([]database.OpeningStat, 30)
	for i := range openings {
		openings[i] = database.OpeningStat{OpeningName: "Opening", TotalGames: 5}
	}

	prompt := FormatInsightsPrompt(InsightsInput{Username: "tester", Openings: openings})
	if got := strings.Count(prompt, "- Opening:"); got != maxPromptOpenings {
		t.Errorf("prompt lists %d openings, want %d", got, maxPromptOpenings)
	}
}
