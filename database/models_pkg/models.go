package models

import "time"

// Game is one row of the games table, one per played game from the
// analyzed player's perspective.
//
// Key Fields:
//   - LichessID: the export's game identifier, the dedup key across runs
//   - PlayedAt: game start in UTC (indexed for the rating series)
//   - LocalDate/LocalWeekday/LocalHour: start converted to the configured
//     timezone, for activity breakdowns
//   - RatedComplete: both Elo tags were present; records with a missing
//     rating stay in the table but are excluded from rating analytics
//   - RatingChange: signed diff from the player's perspective, NULL for
//     games without a rating diff tag
type Game struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LichessID string    `gorm:"size:16;uniqueIndex;not null" json:"lichess_id"`
	PlayedAt  time.Time `gorm:"index;not null" json:"played_at"`

	LocalDate    time.Time `gorm:"index" json:"local_date"`
	LocalWeekday string    `gorm:"size:10" json:"local_weekday"`
	LocalHour    int       `json:"local_hour"`

	Color          string `gorm:"size:5;not null" json:"color"` // white, black
	Opponent       string `gorm:"size:30;index" json:"opponent"`
	PlayerRating   int    `json:"player_rating"`
	OpponentRating int    `json:"opponent_rating"`
	EloDiff        int    `json:"elo_diff"` // player - opponent
	RatingChange   *int   `json:"rating_change,omitempty"`
	RatingGained   int    `json:"rating_gained"`
	RatingLost     int    `json:"rating_lost"`
	RatedComplete  bool   `gorm:"index" json:"rated_complete"`

	Result         string `gorm:"size:5;index;not null" json:"result"` // win, loss, draw
	Termination    string `gorm:"size:30;index" json:"termination"`
	RawTermination string `gorm:"size:50" json:"raw_termination"`

	OpeningName string `gorm:"size:120;index" json:"opening_name"`
	ECO         string `gorm:"size:3" json:"eco"`

	Event        string `gorm:"size:120" json:"event"`
	Rated        bool   `json:"rated"`
	InTournament bool   `json:"in_tournament"`
	TimeControl  string `gorm:"size:15" json:"time_control"`
	TimeClass    string `gorm:"size:15;index" json:"time_class"`

	Plies    int    `json:"plies"`
	MoveText string `gorm:"type:text" json:"move_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Game
func (Game) TableName() string {
	return "games"
}

// ImportRun records one fetch+wrangle pass: the requested window, what came
// back and what was kept. The dropped-block count required by the wrangler
// contract lives here.
type ImportRun struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartedAt  time.Time `gorm:"index;not null" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Username string     `gorm:"size:30;not null" json:"username"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`

	FetchedBytes  int    `json:"fetched_bytes"`
	ParsedGames   int    `json:"parsed_games"`
	DroppedBlocks int    `json:"dropped_blocks"`
	SavedGames    int    `json:"saved_games"`
	Duplicates    int    `json:"duplicates"`
	FromCache     bool   `json:"from_cache"`
	Status        string `gorm:"size:10;not null" json:"status"` // OK, FAILED
	Error         string `gorm:"type:text" json:"error,omitempty"`
}

// TableName specifies the table name for ImportRun
func (ImportRun) TableName() string {
	return "import_runs"
}
