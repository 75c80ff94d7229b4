package app

import (
	"fmt"
	"math"

	"lichess-lens/database"
)

// Scorecard thresholds
const (
	MinScoreForGoodForm = 50 // Minimum score out of 100 to call the player "in form"
)

// FormScorecard is a weighted scoring of the player's recent shape.
// Maximum score is 100 points across 4 categories (25 points each).
type FormScorecard struct {
	// Results (max 25 pts)
	WinRate      int // 0-15: >= 55% = 15, >= 50% = 11, >= 45% = 7, < 45% = 0
	ColorBalance int // 0-10: white/black win-rate gap < 5 = 10, < 10 = 6, < 15 = 3, else 0

	// Rating (max 25 pts)
	TrendSlope int // 0-15: slope per 100 games >= 20 = 15, >= 5 = 10, >= -5 = 5, else 0
	NetFlow    int // 0-10: rating gained - lost > 0 = 10, >= -20 = 5, else 0

	// Discipline (max 25 pts)
	ClockLosses  int // 0-15: time forfeit share < 5% = 15, < 10% = 10, < 20% = 5, else 0
	Abandonments int // 0-10: 0% = 10, < 2% = 6, < 5% = 3, else 0

	// Opposition (max 25 pts)
	Opposition int // 0-15: avg rating gap <= -25 = 15, <= 0 = 10, <= 25 = 6, else 3
	Upsets     int // 0-10: score vs stronger >= 0.5 = 10, >= 0.4 = 7, >= 0.3 = 4, else 0

	// Breakdown for logging
	Breakdown map[string]int
}

// NewFormScorecard creates a new empty scorecard
func NewFormScorecard() *FormScorecard {
	return &FormScorecard{
		Breakdown: make(map[string]int),
	}
}

// Total calculates the total score (max 100)
func (sc *FormScorecard) Total() int {
	total := sc.WinRate + sc.ColorBalance +
		sc.TrendSlope + sc.NetFlow +
		sc.ClockLosses + sc.Abandonments +
		sc.Opposition + sc.Upsets

	if total > 100 {
		return 100
	}
	if total < 0 {
		return 0
	}
	return total
}

// ResultsScore returns the subtotal for results (max 25)
func (sc *FormScorecard) ResultsScore() int {
	return sc.WinRate + sc.ColorBalance
}

// RatingScore returns the subtotal for rating movement (max 25)
func (sc *FormScorecard) RatingScore() int {
	return sc.TrendSlope + sc.NetFlow
}

// DisciplineScore returns the subtotal for avoidable losses (max 25)
func (sc *FormScorecard) DisciplineScore() int {
	return sc.ClockLosses + sc.Abandonments
}

// OppositionScore returns the subtotal for strength of schedule (max 25)
func (sc *FormScorecard) OppositionScore() int {
	return sc.Opposition + sc.Upsets
}

// InForm returns true if the score meets the minimum threshold
func (sc *FormScorecard) InForm() bool {
	return sc.Total() >= MinScoreForGoodForm
}

// String returns a formatted breakdown of the scorecard
func (sc *FormScorecard) String() string {
	return fmt.Sprintf(
		"Form: %d/100 [Results:%d/25, Rating:%d/25, Discipline:%d/25, Opposition:%d/25]",
		sc.Total(),
		sc.ResultsScore(),
		sc.RatingScore(),
		sc.DisciplineScore(),
		sc.OppositionScore(),
	)
}

// ScorecardEvaluator builds form scorecards from the stored games
type ScorecardEvaluator struct {
	repo         *database.GameRepository
	ratings      *RatingAnalyzer
	correlations *CorrelationAnalyzer
}

// NewScorecardEvaluator creates a new evaluator
func NewScorecardEvaluator(repo *database.GameRepository, ratings *RatingAnalyzer, correlations *CorrelationAnalyzer) *ScorecardEvaluator {
	return &ScorecardEvaluator{
		repo:         repo,
		ratings:      ratings,
		correlations: correlations,
	}
}

// Evaluate scores the player's current form across all stored games
func (se *ScorecardEvaluator) Evaluate() (*FormScorecard, error) {
	sc := NewFormScorecard()

	overall, err := se.repo.GetOverallStats()
	if err != nil {
		return nil, err
	}
	if overall.TotalGames == 0 {
		return sc, nil
	}

	sc.WinRate = scoreWinRate(overall.WinRate)
	sc.Breakdown["win_rate"] = sc.WinRate

	colors, err := se.repo.GetColorStats()
	if err != nil {
		return nil, err
	}
	sc.ColorBalance = scoreColorBalance(colors)
	sc.Breakdown["color_balance"] = sc.ColorBalance

	trends, err := se.ratings.Compute("")
	if err != nil {
		return nil, err
	}
	sc.TrendSlope = scoreTrendSlope(trends)
	sc.Breakdown["trend_slope"] = sc.TrendSlope

	sc.NetFlow = scoreNetFlow(overall.RatingGained - overall.RatingLost)
	sc.Breakdown["net_flow"] = sc.NetFlow

	terminations, err := se.repo.GetTerminationStats()
	if err != nil {
		return nil, err
	}
	sc.ClockLosses = scoreClockLosses(terminations)
	sc.Abandonments = scoreAbandonments(terminations)
	sc.Breakdown["clock_losses"] = sc.ClockLosses
	sc.Breakdown["abandonments"] = sc.Abandonments

	entries, err := se.correlations.Compute()
	if err != nil {
		return nil, err
	}
	sc.Opposition, sc.Upsets = scoreOpposition(entries)
	sc.Breakdown["opposition"] = sc.Opposition
	sc.Breakdown["upsets"] = sc.Upsets

	return sc, nil
}

// Report evaluates the current form and flattens it for the API
func (se *ScorecardEvaluator) Report() (database.FormReport, error) {
	sc, err := se.Evaluate()
	if err != nil {
		return database.FormReport{}, err
	}
	return database.FormReport{
		Total:      sc.Total(),
		Results:    sc.ResultsScore(),
		Rating:     sc.RatingScore(),
		Discipline: sc.DisciplineScore(),
		Opposition: sc.OppositionScore(),
		InForm:     sc.InForm(),
		Breakdown:  sc.Breakdown,
		Summary:    sc.String(),
	}, nil
}

func scoreWinRate(winRate float64) int {
	switch {
	case winRate >= 55:
		return 15
	case winRate >= 50:
		return 11
	case winRate >= 45:
		return 7
	default:
		return 0
	}
}

func scoreColorBalance(colors []database.ColorStat) int {
	var white, black float64
	for _, c := range colors {
		switch c.Color {
		case "white":
			white = c.WinRate
		case "black":
			black = c.WinRate
		}
	}

	gap := math.Abs(white - black)
	switch {
	case gap < 5:
		return 10
	case gap < 10:
		return 6
	case gap < 15:
		return 3
	default:
		return 0
	}
}

func scoreTrendSlope(trends []database.RatingTrend) int {
	// Weight the slope by sample size so a thin time class does not
	// dominate the score.
	var weighted float64
	var total int
	for _, t := range trends {
		weighted += t.SlopePer100 * float64(t.Games)
		total += t.Games
	}
	if total == 0 {
		return 5
	}
	slope := weighted / float64(total)

	switch {
	case slope >= 20:
		return 15
	case slope >= 5:
		return 10
	case slope >= -5:
		return 5
	default:
		return 0
	}
}

func scoreNetFlow(net int) int {
	switch {
	case net > 0:
		return 10
	case net >= -20:
		return 5
	default:
		return 0
	}
}

func scoreClockLosses(terminations []database.TerminationStat) int {
	share := terminationShare(terminations, "time forfeit")
	switch {
	case share < 5:
		return 15
	case share < 10:
		return 10
	case share < 20:
		return 5
	default:
		return 0
	}
}

func scoreAbandonments(terminations []database.TerminationStat) int {
	share := terminationShare(terminations, "abandonment")
	switch {
	case share == 0:
		return 10
	case share < 2:
		return 6
	case share < 5:
		return 3
	default:
		return 0
	}
}

func terminationShare(terminations []database.TerminationStat, category string) float64 {
	for _, t := range terminations {
		if t.Termination == category {
			return t.SharePct
		}
	}
	return 0
}

func scoreOpposition(entries []database.CorrelationEntry) (opposition, upsets int) {
	for _, e := range entries {
		if e.TimeClass != "all" {
			continue
		}
		if e.Samples == 0 {
			return 3, 0
		}

		// Negative gap means the opponents were the stronger side.
		switch {
		case e.AvgRatingGap <= -25:
			opposition = 15
		case e.AvgRatingGap <= 0:
			opposition = 10
		case e.AvgRatingGap <= 25:
			opposition = 6
		default:
			opposition = 3
		}

		switch {
		case e.ScoreAgainstStronger >= 0.5:
			upsets = 10
		case e.ScoreAgainstStronger >= 0.4:
			upsets = 7
		case e.ScoreAgainstStronger >= 0.3:
			upsets = 4
		default:
			upsets = 0
		}
		return opposition, upsets
	}
	return 3, 0
}
