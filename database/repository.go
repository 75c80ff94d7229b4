package database

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameRepository handles database operations for the games table
type GameRepository struct {
	db *Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *Database) *GameRepository {
	return &GameRepository{db: db}
}

// InitSchema performs auto-migration and index setup
func (r *GameRepository) InitSchema() error {
	if err := r.db.db.AutoMigrate(
		&Game{},
		&ImportRun{},
	); err != nil {
		return WrapDBError("InitSchema", err)
	}

	// Composite indexes for the dashboard aggregates
	r.db.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_games_timeclass_played
		ON games (time_class, played_at)
	`)
	r.db.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_games_opening_result
		ON games (opening_name, result)
	`)

	return nil
}

// SaveGames upserts a batch of games, keyed on the lichess game id so
// overlapping import windows never duplicate rows. Returns the number of
// newly inserted rows and the number of duplicates skipped.
func (r *GameRepository) SaveGames(games []Game) (saved, duplicates int, err error) {
	if len(games) == 0 {
		return 0, 0, nil
	}

	res := r.db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lichess_id"}},
		DoNothing: true,
	}).CreateInBatches(games, 500)
	if res.Error != nil {
		return 0, 0, WrapDBError("SaveGames", res.Error)
	}

	saved = int(res.RowsAffected)
	duplicates = len(games) - saved
	return saved, duplicates, nil
}

// LatestGameTime returns the start time of the most recent stored game,
// zero time for an empty table. The sync loop uses it as the next window's
// lower bound.
func (r *GameRepository) LatestGameTime() (time.Time, error) {
	var game Game
	err := r.db.db.Order("played_at DESC").First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, WrapDBError("LatestGameTime", err)
	}
	return game.PlayedAt, nil
}

// CountGames returns the total number of stored games
func (r *GameRepository) CountGames() (int64, error) {
	var count int64
	err := r.db.db.Model(&Game{}).Count(&count).Error
	return count, WrapDBError("CountGames", err)
}

// GetGames retrieves games with filters, newest first. The source text
// order is not assumed chronological; ordering is always explicit here.
func (r *GameRepository) GetGames(timeClass, result, opening string, limit, offset int) ([]Game, error) {
	var games []Game
	query := r.db.db.Order("played_at DESC")

	if timeClass != "" {
		query = query.Where("time_class = ?", timeClass)
	}
	if result != "" {
		query = query.Where("result = ?", result)
	}
	if opening != "" {
		query = query.Where("opening_name = ?", opening)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&games).Error
	return games, WrapDBError("GetGames", err)
}

// GetGameByLichessID retrieves a single game
func (r *GameRepository) GetGameByLichessID(id string) (*Game, error) {
	var game Game
	err := r.db.db.Where("lichess_id = ?", id).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundErrorWithID("game", id)
	}
	if err != nil {
		return nil, WrapDBError("GetGameByLichessID", err)
	}
	return &game, nil
}

// SaveImportRun persists an import run record
func (r *GameRepository) SaveImportRun(run *ImportRun) error {
	return WrapDBError("SaveImportRun", r.db.db.Create(run).Error)
}

// GetImportRuns retrieves recent import runs, newest first
func (r *GameRepository) GetImportRuns(limit int) ([]ImportRun, error) {
	var runs []ImportRun
	query := r.db.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, WrapDBError("GetImportRuns", err)
}
