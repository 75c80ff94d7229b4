package app

import (
	"testing"
	"time"

	"lichess-lens/config"
	"lichess-lens/pgn"
)

func testImporter(t *testing.T) *Importer {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return &Importer{
		cfg: &config.Config{Username: "tester"},
		loc: loc,
	}
}

func TestToGame(t *testing.T) {
	im := testImporter(t)
	change := 8

	// 22:30 UTC is 00:30 next day in Cairo (UTC+2).
	playedAt := time.Date(2022, 1, 1, 22, 30, 0, 0, time.UTC)
	rec := pgn.GameRecord{
		GameID:         "abcd1234",
		PlayedAt:       playedAt,
		Color:          pgn.ColorWhite,
		Opponent:       "rival",
		PlayerRating:   1500,
		OpponentRating: 1600,
		RatingChange:   &change,
		RatedComplete:  true,
		Result:         pgn.OutcomeWin,
		Termination:    pgn.TerminationCheckmate,
		TimeClass:      "Blitz",
		Plies:          40,
	}

	game := im.toGame(rec)

	if game.LichessID != "abcd1234" {
		t.Errorf("LichessID = %q", game.LichessID)
	}
	if game.EloDiff != -100 {
		t.Errorf("EloDiff = %d, want -100", game.EloDiff)
	}
	if game.RatingGained != 8 || game.RatingLost != 0 {
		t.Errorf("RatingGained/Lost = %d/%d, want 8/0", game.RatingGained, game.RatingLost)
	}
	if game.LocalWeekday != "Sunday" {
		t.Errorf("LocalWeekday = %q, want Sunday (local midnight rollover)", game.LocalWeekday)
	}
	if game.LocalHour != 0 {
		t.Errorf("LocalHour = %d, want 0", game.LocalHour)
	}
}

func TestToGameNegativeRatingChange(t *testing.T) {
	im := testImporter(t)
	change := -12

	game := im.toGame(pgn.GameRecord{
		GameID:       "wxyz9876",
		PlayedAt:     time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC),
		RatingChange: &change,
	})

	if game.RatingGained != 0 || game.RatingLost != 12 {
		t.Errorf("RatingGained/Lost = %d/%d, want 0/12", game.RatingGained, game.RatingLost)
	}
}

func TestToGameMissingRatings(t *testing.T) {
	im := testImporter(t)

	game := im.toGame(pgn.GameRecord{
		GameID:         "anon0001",
		PlayedAt:       time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC),
		PlayerRating:   1500,
		OpponentRating: 0,
		RatedComplete:  false,
	})

	// Without both ratings the gap column must stay zero, not 1500.
	if game.EloDiff != 0 {
		t.Errorf("EloDiff = %d, want 0 when ratings are incomplete", game.EloDiff)
	}
}

func TestToGameSynthesizesID(t *testing.T) {
	im := testImporter(t)
	playedAt := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)

	game := im.toGame(pgn.GameRecord{PlayedAt: playedAt})
	if game.LichessID == "" {
		t.Fatal("expected a synthetic id for a record without a Site tag")
	}

	again := im.toGame(pgn.GameRecord{PlayedAt: playedAt})
	if game.LichessID != again.LichessID {
		t.Error("synthetic id should be stable for the same record")
	}

	// Two Site-less games in the same second must not collide, or the
	// unique index silently drops the second one.
	other := im.toGame(pgn.GameRecord{PlayedAt: playedAt, Opponent: "drnykterstein", Plies: 61})
	if game.LichessID == other.LichessID {
		t.Errorf("synthetic id %q collides for distinct same-second games", game.LichessID)
	}
	if len(other.LichessID) > 16 {
		t.Errorf("synthetic id %q exceeds the column size", other.LichessID)
	}
}

func TestCleanDropsInBatchDuplicates(t *testing.T) {
	im := testImporter(t)
	playedAt := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)

	records := []pgn.GameRecord{
		{GameID: "aaaa1111", PlayedAt: playedAt},
		{GameID: "bbbb2222", PlayedAt: playedAt},
		{GameID: "aaaa1111", PlayedAt: playedAt},
	}

	games := im.clean(records)
	if len(games) != 2 {
		t.Fatalf("len = %d, want 2", len(games))
	}
	if games[0].LichessID != "aaaa1111" || games[1].LichessID != "bbbb2222" {
		t.Errorf("order not preserved: %s, %s", games[0].LichessID, games[1].LichessID)
	}
}
