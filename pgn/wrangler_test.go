package pgn

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const sampleGame = `[Event "Rated Blitz game"]
[Site "https://lichess.org/AbCdEfGh"]
[Date "2022.01.01"]
[White "me"]
[Black "opp"]
[Result "1-0"]
[UTCDate "2022.01.01"]
[UTCTime "18:30:00"]
[WhiteElo "1500"]
[BlackElo "1600"]
[WhiteRatingDiff "+8"]
[BlackRatingDiff "-8"]
[ECO "B01"]
[Opening "Scandinavian Defense"]
[TimeControl "300+3"]
[Termination "Normal"]

1. e4 d5 2. exd5 Qxd5 3. Nc3 Qd8 1-0`

func TestWrangleSingleBlockRoundTrip(t *testing.T) {
	res := Wrangle(sampleGame, "me")
	if res.Dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", res.Dropped)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}

	rec := res.Records[0]
	if rec.GameID != "AbCdEfGh" {
		t.Errorf("game id: expected AbCdEfGh, got %s", rec.GameID)
	}
	want := time.Date(2022, 1, 1, 18, 30, 0, 0, time.UTC)
	if !rec.PlayedAt.Equal(want) {
		t.Errorf("played at: expected %v, got %v", want, rec.PlayedAt)
	}
	if rec.Color != ColorWhite {
		t.Errorf("color: expected white, got %s", rec.Color)
	}
	if rec.Opponent != "opp" {
		t.Errorf("opponent: expected opp, got %s", rec.Opponent)
	}
	if rec.PlayerRating != 1500 || rec.OpponentRating != 1600 {
		t.Errorf("ratings: expected 1500/1600, got %d/%d", rec.PlayerRating, rec.OpponentRating)
	}
	if rec.RatingChange == nil || *rec.RatingChange != 8 {
		t.Errorf("rating change: expected +8, got %v", rec.RatingChange)
	}
	if !rec.RatedComplete {
		t.Error("expected rated-complete record")
	}
	if rec.Result != OutcomeWin {
		t.Errorf("result: expected win, got %s", rec.Result)
	}
	// decisive + Termination "Normal" + no mating move = resignation
	if rec.Termination != TerminationResignation {
		t.Errorf("termination: expected resignation, got %s", rec.Termination)
	}
	if rec.OpeningName != "Scandinavian Defense" {
		t.Errorf("opening: got %s", rec.OpeningName)
	}
	if rec.TimeClass != "Blitz" {
		t.Errorf("time class: expected Blitz, got %s", rec.TimeClass)
	}
	if !rec.Rated {
		t.Error("expected rated game")
	}
	if rec.MoveText != "1. e4 d5 2. exd5 Qxd5 3. Nc3 Qd8" {
		t.Errorf("movetext: got %q", rec.MoveText)
	}
	if rec.Plies != 6 {
		t.Errorf("plies: expected 6, got %d", rec.Plies)
	}
}

func TestWrangleProducesOneRecordPerBlockInOrder(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&sb, `[Site "https://lichess.org/game%04d"]
[UTCDate "2022.03.%02d"]
[White "me"]
[Black "opp"]
[Result "1-0"]

1. d4 d5 1-0

`, i, i+1)
	}

	res := Wrangle(sb.String(), "me")
	if res.Dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", res.Dropped)
	}
	if len(res.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(res.Records))
	}
	for i, rec := range res.Records {
		wantID := fmt.Sprintf("game%04d", i)
		if rec.GameID != wantID {
			t.Errorf("record %d out of source order: expected %s, got %s", i, wantID, rec.GameID)
		}
	}
}

func TestWrangleDropsBlockMissingMandatoryTags(t *testing.T) {
	missingResult := `[UTCDate "2022.01.01"]
[White "me"]
[Black "opp"]

1. e4 e5`

	missingDate := `[White "me"]
[Black "opp"]
[Result "1-0"]

1. e4 e5 1-0`

	blob := missingResult + "\n\n" + sampleGame + "\n\n" + missingDate
	res := Wrangle(blob, "me")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(res.Records))
	}
	if res.Dropped != 2 {
		t.Fatalf("expected 2 dropped blocks, got %d", res.Dropped)
	}
}

func TestWrangleIsolatesCorruptBlocks(t *testing.T) {
	corrupt := `[UTCDate "garbage"]
[White "me"]
[Black "opp"]
[Result "not-a-result"]

?? !! ...`

	blob := sampleGame + "\n\n" + corrupt + "\n\n" + sampleGame
	res := Wrangle(blob, "me")
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records around the corrupt block, got %d", len(res.Records))
	}
	if res.Dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", res.Dropped)
	}
}

func TestResolveOutcomePerspective(t *testing.T) {
	tests := []struct {
		result string
		color  Color
		want   Outcome
	}{
		{"1-0", ColorWhite, OutcomeWin},
		{"1-0", ColorBlack, OutcomeLoss},
		{"0-1", ColorWhite, OutcomeLoss},
		{"0-1", ColorBlack, OutcomeWin},
		{"1/2-1/2", ColorWhite, OutcomeDraw},
		{"1/2-1/2", ColorBlack, OutcomeDraw},
	}
	for _, tt := range tests {
		t.Run(tt.result+"_"+string(tt.color), func(t *testing.T) {
			got, ok := resolveOutcome(tt.result, tt.color)
			if !ok {
				t.Fatal("expected categorizable result")
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, ok := resolveOutcome("*", ColorWhite); ok {
		t.Error("unterminated result should not be categorizable")
	}
}

func TestWranglePlayerAsBlack(t *testing.T) {
	game := strings.ReplaceAll(sampleGame, `[White "me"]`, `[White "somebody"]`)
	game = strings.ReplaceAll(game, `[Black "opp"]`, `[Black "me"]`)

	res := Wrangle(game, "me")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Color != ColorBlack {
		t.Fatalf("expected black, got %s", rec.Color)
	}
	if rec.Result != OutcomeLoss {
		t.Errorf("1-0 as black: expected loss, got %s", rec.Result)
	}
	if rec.Opponent != "somebody" {
		t.Errorf("opponent: expected somebody, got %s", rec.Opponent)
	}
	if rec.PlayerRating != 1600 || rec.OpponentRating != 1500 {
		t.Errorf("ratings from black perspective: got %d/%d", rec.PlayerRating, rec.OpponentRating)
	}
	if rec.RatingChange == nil || *rec.RatingChange != -8 {
		t.Errorf("rating change from black perspective: got %v", rec.RatingChange)
	}
}

func TestWrangleMissingRatingsFlagsIncomplete(t *testing.T) {
	game := strings.ReplaceAll(sampleGame, `[WhiteElo "1500"]`, `[WhiteElo "?"]`)
	res := Wrangle(game, "me")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.PlayerRating != 0 {
		t.Errorf("expected missing player rating, got %d", rec.PlayerRating)
	}
	if rec.RatedComplete {
		t.Error("record with a missing rating must be flagged unrated-incomplete")
	}
}

func TestWrangleMalformedDateDegradesToMissing(t *testing.T) {
	game := strings.ReplaceAll(sampleGame, `[UTCDate "2022.01.01"]`, `[UTCDate "01/01/2022"]`)
	game = strings.ReplaceAll(game, `[UTCTime "18:30:00"]`, ``)
	res := Wrangle(game, "me")
	if len(res.Records) != 1 {
		t.Fatalf("malformed date must not drop the block: got %d records", len(res.Records))
	}
	if !res.Records[0].PlayedAt.IsZero() {
		t.Errorf("expected zero PlayedAt, got %v", res.Records[0].PlayedAt)
	}
}

func TestWrangleMateInMovetext(t *testing.T) {
	game := strings.ReplaceAll(sampleGame,
		"1. e4 d5 2. exd5 Qxd5 3. Nc3 Qd8 1-0",
		"1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0")
	res := Wrangle(game, "me")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if res.Records[0].Termination != TerminationCheckmate {
		t.Errorf("mating move must resolve Normal to checkmate, got %s", res.Records[0].Termination)
	}
}

func TestWrangleCasualAndTournamentFlags(t *testing.T) {
	tests := []struct {
		event          string
		wantRated      bool
		wantTournament bool
	}{
		{"Rated Blitz game", true, false},
		{"Casual Bullet game", false, false},
		{"Rated Blitz tournament https://lichess.org/tournament/abc", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			game := strings.ReplaceAll(sampleGame, `[Event "Rated Blitz game"]`, fmt.Sprintf(`[Event "%s"]`, tt.event))
			res := Wrangle(game, "me")
			if len(res.Records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(res.Records))
			}
			rec := res.Records[0]
			if rec.Rated != tt.wantRated {
				t.Errorf("rated: expected %v, got %v", tt.wantRated, rec.Rated)
			}
			if rec.InTournament != tt.wantTournament {
				t.Errorf("in_tournament: expected %v, got %v", tt.wantTournament, rec.InTournament)
			}
		})
	}
}

func TestWrangleStripsCommentsFromMovetext(t *testing.T) {
	game := strings.ReplaceAll(sampleGame,
		"1. e4 d5 2. exd5 Qxd5 3. Nc3 Qd8 1-0",
		"1. e4 { [%clk 0:05:00] } d5 { [%clk 0:05:00] } 2. exd5 Qxd5 1-0")
	res := Wrangle(game, "me")
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	rec := res.Records[0]
	if rec.MoveText != "1. e4 d5 2. exd5 Qxd5" {
		t.Errorf("movetext with comments: got %q", rec.MoveText)
	}
	if rec.Plies != 4 {
		t.Errorf("plies: expected 4, got %d", rec.Plies)
	}
}

func TestWrangleEmptyInput(t *testing.T) {
	res := Wrangle("", "me")
	if len(res.Records) != 0 || res.Dropped != 0 {
		t.Errorf("empty input: expected no records and no drops, got %d/%d", len(res.Records), res.Dropped)
	}
}
