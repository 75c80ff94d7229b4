package llm

import (
	"fmt"
	"strings"

	"lichess-lens/database"
	"lichess-lens/helpers"
)

// Caps keep the prompt inside a small context window
const (
	maxPromptOpenings     = 10
	maxPromptMonths       = 12
	maxPromptTerminations = 6
)

// InsightsInput bundles the aggregates the prompt is built from
type InsightsInput struct {
	Username     string
	Overall      database.OverallStat
	Colors       []database.ColorStat
	Openings     []database.OpeningStat
	Terminations []database.TerminationStat
	Months       []database.MonthlyStat
}

// FormatInsightsPrompt renders the stored aggregates as a compact prompt
// for the coach persona
func FormatInsightsPrompt(in InsightsInput) string {
	var sb strings.Builder
	sb.Grow(1024 + len(in.Openings)*80 + len(in.Months)*60)

	sb.WriteString(fmt.Sprintf("Player: %s\n", in.Username))
	sb.WriteString(fmt.Sprintf("Lifetime: %d games, record %s, win rate %s, peak rating %d\n",
		in.Overall.TotalGames,
		helpers.FormatScore(in.Overall.Wins, in.Overall.Losses, in.Overall.Draws),
		helpers.FormatWinRate(in.Overall.WinRate),
		in.Overall.PeakRating))
	sb.WriteString(fmt.Sprintf("Rating flow: gained %d, lost %d (net %s)\n",
		in.Overall.RatingGained, in.Overall.RatingLost,
		helpers.FormatRatingChange(in.Overall.RatingGained-in.Overall.RatingLost)))

	if len(in.Colors) > 0 {
		sb.WriteString("\nBy color:\n")
		for _, c := range in.Colors {
			sb.WriteString(fmt.Sprintf("- %s: %d games, %s, win rate %s\n",
				c.Color, c.TotalGames,
				helpers.FormatScore(c.Wins, c.Losses, c.Draws),
				helpers.FormatWinRate(c.WinRate)))
		}
	}

	if len(in.Openings) > 0 {
		sb.WriteString("\nMost played openings:\n")
		for i, o := range in.Openings {
			if i >= maxPromptOpenings {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %d games, %s, win rate %s\n",
				o.OpeningName, o.TotalGames,
				helpers.FormatScore(o.Wins, o.Losses, o.Draws),
				helpers.FormatWinRate(o.WinRate)))
		}
	}

	if len(in.Terminations) > 0 {
		sb.WriteString("\nHow games end:\n")
		for i, t := range in.Terminations {
			if i >= maxPromptTerminations {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s: %d games (%s of all), won %d, lost %d\n",
				t.Termination, t.TotalGames,
				helpers.FormatWinRate(t.SharePct), t.Wins, t.Losses))
		}
	}

	if len(in.Months) > 0 {
		sb.WriteString("\nRecent months:\n")
		months := in.Months
		if len(months) > maxPromptMonths {
			months = months[len(months)-maxPromptMonths:]
		}
		for _, m := range months {
			sb.WriteString(fmt.Sprintf("- %s: %d games, win rate %s, avg rating %.0f, rating %s\n",
				m.YearMonth, m.TotalGames,
				helpers.FormatWinRate(m.WinRate), m.AvgRating,
				helpers.FormatRatingChange(m.RatingGained-m.RatingLost)))
		}
	}

	sb.WriteString("\nBased strictly on these numbers, name the player's three biggest leaks and one strength. For each leak give one concrete training suggestion.\n")
	return sb.String()
}
