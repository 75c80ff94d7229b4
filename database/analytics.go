package database

// Analyzer result structures. These are computed in the app layer but
// declared here next to the other aggregate structures so the API layer
// can serve them without importing the analyzers.

// RatingTrend summarizes the rating trajectory for one time class
type RatingTrend struct {
	TimeClass   string  `json:"time_class"`
	Games       int     `json:"games"`
	Start       int     `json:"start"`
	Current     int     `json:"current"`
	Peak        int     `json:"peak"`
	Low         int     `json:"low"`
	NetChange   int     `json:"net_change"`
	SlopePer100 float64 `json:"slope_per_100"` // least-squares rating points per 100 games

	Series    []RatingPoint `json:"series,omitempty"`
	MovingAvg []float64     `json:"moving_avg,omitempty"`
}

// CorrelationEntry reports how game score co-varies with opponent strength
// for one slice of the table. TimeClass is "all" for the overall row; the
// rating gap averages negative when the opposition is the stronger side,
// and the stronger/weaker scores are mean game scores against higher and
// lower rated opponents.
type CorrelationEntry struct {
	TimeClass             string  `json:"time_class"`
	Samples               int     `json:"samples"`
	OpponentRatingVsScore float64 `json:"opponent_rating_vs_score"`
	RatingGapVsScore      float64 `json:"rating_gap_vs_score"`
	AvgOpponentRating     float64 `json:"avg_opponent_rating"`
	AvgRatingGap          float64 `json:"avg_rating_gap"`
	ScoreAgainstStronger  float64 `json:"score_against_stronger"`
	ScoreAgainstWeaker    float64 `json:"score_against_weaker"`
}

// FormReport is the serializable view of a form scorecard
type FormReport struct {
	Total      int            `json:"total"`
	Results    int            `json:"results"`
	Rating     int            `json:"rating"`
	Discipline int            `json:"discipline"`
	Opposition int            `json:"opposition"`
	InForm     bool           `json:"in_form"`
	Breakdown  map[string]int `json:"breakdown"`
	Summary    string         `json:"summary"`
}
