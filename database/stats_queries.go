package database

import (
	"time"
)

// Dashboard-specific aggregate structures

// OpeningStat summarizes results for one opening
type OpeningStat struct {
	OpeningName string  `json:"opening_name"`
	TotalGames  int     `json:"total_games"`
	Wins        int     `json:"wins"`
	Draws       int     `json:"draws"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
}

// ColorStat summarizes results for one color
type ColorStat struct {
	Color      string  `json:"color"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
}

// TerminationStat counts games per normalized termination category
type TerminationStat struct {
	Termination string  `json:"termination"`
	TotalGames  int     `json:"total_games"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	SharePct    float64 `json:"share_pct"`
}

// MonthlyStat summarizes one calendar month of play
type MonthlyStat struct {
	YearMonth     string  `json:"year_month"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"win_rate"`
	AvgRating     float64 `json:"avg_rating"`
	RatingGained  int     `json:"rating_gained"`
	RatingLost    int     `json:"rating_lost"`
}

// OpponentStat aggregates games against one opponent
type OpponentStat struct {
	Opponent          string    `json:"opponent"`
	TotalGames        int       `json:"total_games"`
	Wins              int       `json:"wins"`
	Draws             int       `json:"draws"`
	Losses            int       `json:"losses"`
	WinRate           float64   `json:"win_rate"`
	AvgOpponentRating float64   `json:"avg_opponent_rating"`
	LastPlayedAt      time.Time `json:"last_played_at"`
}

// TimeClassStat summarizes results per speed category
type TimeClassStat struct {
	TimeClass  string  `json:"time_class"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"`
	AvgPlies   float64 `json:"avg_plies"`
}

// ActivityStat counts games per local weekday/hour bucket
type ActivityStat struct {
	Weekday    string  `json:"weekday"`
	Hour       int     `json:"hour"`
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
}

// RatingPoint is one sample of the rating-over-time series
type RatingPoint struct {
	PlayedAt     time.Time `json:"played_at"`
	PlayerRating int       `json:"player_rating"`
	TimeClass    string    `json:"time_class"`
}

// CorrelationSample pairs a game score with the opponent's strength,
// input for the Pearson correlation analyzer
type CorrelationSample struct {
	OpponentRating int     `json:"opponent_rating"`
	EloDiff        int     `json:"elo_diff"`
	Score          float64 `json:"score"` // 1 win, 0.5 draw, 0 loss
	TimeClass      string  `json:"time_class"`
}

// OverallStat is the single-row lifetime summary
type OverallStat struct {
	TotalGames      int       `json:"total_games"`
	Wins            int       `json:"wins"`
	Draws           int       `json:"draws"`
	Losses          int       `json:"losses"`
	WinRate         float64   `json:"win_rate"`
	RatedGames      int       `json:"rated_games"`
	TournamentGames int       `json:"tournament_games"`
	PeakRating      int       `json:"peak_rating"`
	RatingGained    int       `json:"rating_gained"`
	RatingLost      int       `json:"rating_lost"`
	AvgPlies        float64   `json:"avg_plies"`
	Opponents       int       `json:"opponents"`
	FirstGameAt     time.Time `json:"first_game_at"`
	LastGameAt      time.Time `json:"last_game_at"`
}

const winRateExpr = `
	ROUND(100.0 * SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) / COUNT(*), 2)`

// GetOpeningStats returns per-opening results, most played first. Openings
// below minGames are folded out of the report entirely.
func (r *GameRepository) GetOpeningStats(color string, minGames, limit int) ([]OpeningStat, error) {
	var stats []OpeningStat

	query := `
		SELECT
			opening_name,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END) as draws,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,` + winRateExpr + ` as win_rate
		FROM games
		WHERE (? = '' OR color = ?)
		GROUP BY opening_name
		HAVING COUNT(*) >= ?
		ORDER BY total_games DESC
		LIMIT ?
	`

	err := r.db.db.Raw(query, color, color, minGames, limit).Scan(&stats).Error
	return stats, WrapDBError("GetOpeningStats", err)
}

// GetOverallStats returns the lifetime summary row. With no games stored
// every field comes back zero.
func (r *GameRepository) GetOverallStats() (OverallStat, error) {
	var stat OverallStat

	query := `
		SELECT
			COUNT(*) as total_games,
			COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0) as wins,
			COALESCE(SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END), 0) as draws,
			COALESCE(SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END), 0) as losses,
			COALESCE(ROUND(100.0 * SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0), 2), 0) as win_rate,
			COALESCE(SUM(CASE WHEN rated THEN 1 ELSE 0 END), 0) as rated_games,
			COALESCE(SUM(CASE WHEN in_tournament THEN 1 ELSE 0 END), 0) as tournament_games,
			COALESCE(MAX(CASE WHEN rated_complete THEN player_rating END), 0) as peak_rating,
			COALESCE(SUM(rating_gained), 0) as rating_gained,
			COALESCE(SUM(rating_lost), 0) as rating_lost,
			COALESCE(ROUND(AVG(plies), 1), 0) as avg_plies,
			COUNT(DISTINCT opponent) as opponents,
			COALESCE(MIN(played_at), 'epoch') as first_game_at,
			COALESCE(MAX(played_at), 'epoch') as last_game_at
		FROM games
	`

	err := r.db.db.Raw(query).Scan(&stat).Error
	return stat, WrapDBError("GetOverallStats", err)
}

// GetColorStats returns the white/black performance split
func (r *GameRepository) GetColorStats() ([]ColorStat, error) {
	var stats []ColorStat

	query := `
		SELECT
			color,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END) as draws,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,` + winRateExpr + ` as win_rate
		FROM games
		GROUP BY color
		ORDER BY color
	`

	err := r.db.db.Raw(query).Scan(&stats).Error
	return stats, WrapDBError("GetColorStats", err)
}

// GetTerminationStats returns the breakdown of how games ended
func (r *GameRepository) GetTerminationStats() ([]TerminationStat, error) {
	var stats []TerminationStat

	query := `
		SELECT
			termination,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,
			ROUND(100.0 * COUNT(*) / SUM(COUNT(*)) OVER (), 2) as share_pct
		FROM games
		GROUP BY termination
		ORDER BY total_games DESC
	`

	err := r.db.db.Raw(query).Scan(&stats).Error
	return stats, WrapDBError("GetTerminationStats", err)
}

// GetMonthlyStats returns month-by-month results and rating flow
func (r *GameRepository) GetMonthlyStats() ([]MonthlyStat, error) {
	var stats []MonthlyStat

	query := `
		SELECT
			TO_CHAR(played_at, 'YYYY-MM') as year_month,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END) as draws,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,` + winRateExpr + ` as win_rate,
			ROUND(AVG(CASE WHEN rated_complete THEN player_rating END), 1) as avg_rating,
			COALESCE(SUM(rating_gained), 0) as rating_gained,
			COALESCE(SUM(rating_lost), 0) as rating_lost
		FROM games
		GROUP BY TO_CHAR(played_at, 'YYYY-MM')
		ORDER BY year_month
	`

	err := r.db.db.Raw(query).Scan(&stats).Error
	return stats, WrapDBError("GetMonthlyStats", err)
}

// GetOpponentStats returns the most frequent opponents
func (r *GameRepository) GetOpponentStats(limit int) ([]OpponentStat, error) {
	var stats []OpponentStat

	query := `
		SELECT
			opponent,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END) as draws,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,` + winRateExpr + ` as win_rate,
			ROUND(AVG(CASE WHEN opponent_rating > 0 THEN opponent_rating END), 1) as avg_opponent_rating,
			MAX(played_at) as last_played_at
		FROM games
		GROUP BY opponent
		ORDER BY total_games DESC
		LIMIT ?
	`

	err := r.db.db.Raw(query, limit).Scan(&stats).Error
	return stats, WrapDBError("GetOpponentStats", err)
}

// GetTimeClassStats returns the per-speed performance split
func (r *GameRepository) GetTimeClassStats() ([]TimeClassStat, error) {
	var stats []TimeClassStat

	query := `
		SELECT
			time_class,
			COUNT(*) as total_games,
			SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END) as wins,
			SUM(CASE WHEN result = 'draw' THEN 1 ELSE 0 END) as draws,
			SUM(CASE WHEN result = 'loss' THEN 1 ELSE 0 END) as losses,` + winRateExpr + ` as win_rate,
			ROUND(AVG(plies), 1) as avg_plies
		FROM games
		GROUP BY time_class
		ORDER BY total_games DESC
	`

	err := r.db.db.Raw(query).Scan(&stats).Error
	return stats, WrapDBError("GetTimeClassStats", err)
}

// GetActivityStats returns games per local weekday and hour
func (r *GameRepository) GetActivityStats() ([]ActivityStat, error) {
	var stats []ActivityStat

	query := `
		SELECT
			local_weekday as weekday,
			local_hour as hour,
			COUNT(*) as total_games,` + winRateExpr + ` as win_rate
		FROM games
		GROUP BY local_weekday, local_hour
		ORDER BY local_weekday, local_hour
	`

	err := r.db.db.Raw(query).Scan(&stats).Error
	return stats, WrapDBError("GetActivityStats", err)
}

// GetRatingSeries returns the rating-over-time series for one time class
// (or all when timeClass is empty), oldest first. Only rated-complete games
// carry a usable rating.
func (r *GameRepository) GetRatingSeries(timeClass string, limit int) ([]RatingPoint, error) {
	var points []RatingPoint

	query := r.db.db.Model(&Game{}).
		Select("played_at, player_rating, time_class").
		Where("rated_complete = ? AND rated = ?", true, true).
		Order("played_at ASC")
	if timeClass != "" {
		query = query.Where("time_class = ?", timeClass)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Scan(&points).Error
	return points, WrapDBError("GetRatingSeries", err)
}

// GetCorrelationSamples returns (opponent strength, score) pairs for the
// correlation analyzer. Games without both ratings are excluded.
func (r *GameRepository) GetCorrelationSamples(timeClass string) ([]CorrelationSample, error) {
	var samples []CorrelationSample

	query := `
		SELECT
			opponent_rating,
			elo_diff,
			CASE result WHEN 'win' THEN 1.0 WHEN 'draw' THEN 0.5 ELSE 0.0 END as score,
			time_class
		FROM games
		WHERE rated_complete = true AND (? = '' OR time_class = ?)
		ORDER BY played_at
	`

	err := r.db.db.Raw(query, timeClass, timeClass).Scan(&samples).Error
	return samples, WrapDBError("GetCorrelationSamples", err)
}
