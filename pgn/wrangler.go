package pgn

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Color of the analyzed player in a game
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Outcome is the game result from the analyzed player's perspective
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// GameRecord is one row of the games table, one per played game
type GameRecord struct {
	GameID   string    `json:"game_id"`
	PlayedAt time.Time `json:"played_at"` // UTC

	Color          Color   `json:"color"`
	Opponent       string  `json:"opponent"`
	PlayerRating   int     `json:"player_rating"`   // 0 when missing
	OpponentRating int     `json:"opponent_rating"` // 0 when missing
	RatingChange   *int    `json:"rating_change,omitempty"`
	RatedComplete  bool    `json:"rated_complete"` // both elo tags present and parseable
	Result         Outcome `json:"result"`

	Termination    Termination `json:"termination"`
	RawTermination string      `json:"raw_termination"`

	OpeningName string `json:"opening_name"`
	ECO         string `json:"eco"`

	Event        string `json:"event"`
	Rated        bool   `json:"rated"`
	InTournament bool   `json:"in_tournament"`
	TimeControl  string `json:"time_control"`
	TimeClass    string `json:"time_class"`

	MoveText string `json:"move_text,omitempty"`
	Plies    int    `json:"plies"`
}

// Result is the output of one wrangling pass
type Result struct {
	Records []GameRecord
	Dropped int // blocks missing mandatory tags or with an uncategorizable result
}

var tagPairRe = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]\s*$`)

// block is one tag-pairs-plus-movetext unit of the source text
type block struct {
	tags  map[string]string
	moves []string
}

// Wrangle parses a raw multi-game PGN blob into one GameRecord per game
// block, preserving source order. Blocks missing the mandatory Date or
// Result tags are dropped and counted; malformed integers and dates degrade
// to missing values. A single corrupt block never aborts the pass.
func Wrangle(raw, username string) Result {
	var out Result
	for _, b := range splitBlocks(raw) {
		rec, ok := convert(b, username)
		if !ok {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

// splitBlocks cuts the blob into game blocks. A tag line following movetext
// starts a new block; the blank line between movetext and the next tag
// section is what the format guarantees, but stray blank lines inside the
// tag section are tolerated.
func splitBlocks(raw string) []block {
	var blocks []block
	cur := block{tags: make(map[string]string)}
	inMovetext := false

	flush := func() {
		if len(cur.tags) > 0 || len(cur.moves) > 0 {
			blocks = append(blocks, cur)
		}
		cur = block{tags: make(map[string]string)}
		inMovetext = false
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if m := tagPairRe.FindStringSubmatch(trimmed); m != nil {
			if inMovetext {
				flush()
			}
			cur.tags[m[1]] = m[2]
			continue
		}
		if trimmed == "" {
			continue
		}
		inMovetext = true
		cur.moves = append(cur.moves, trimmed)
	}
	flush()
	return blocks
}

// convert maps one block to a GameRecord. ok is false when the block lacks
// the mandatory identifying tags (date, result) or the result token is not
// one of the three game outcomes.
func convert(b block, username string) (GameRecord, bool) {
	dateTag, hasDate := b.tags["UTCDate"]
	if !hasDate {
		dateTag, hasDate = b.tags["Date"]
	}
	resultTag, hasResult := b.tags["Result"]
	if !hasDate || !hasResult {
		return GameRecord{}, false
	}

	color := playerColor(b.tags, username)
	outcome, ok := resolveOutcome(resultTag, color)
	if !ok {
		return GameRecord{}, false
	}

	movetext := cleanMovetext(strings.Join(b.moves, " "))

	rec := GameRecord{
		GameID:   gameID(b.tags["Site"]),
		PlayedAt: parsePlayedAt(dateTag, b.tags["UTCTime"]),
		Color:    color,
		Result:   outcome,

		RawTermination: b.tags["Termination"],
		Termination:    ResolveTermination(b.tags["Termination"], outcome, movetext),

		ECO: normalizeECO(b.tags["ECO"]),

		Event:       b.tags["Event"],
		TimeControl: b.tags["TimeControl"],
		TimeClass:   TimeClass(b.tags["TimeControl"]),

		MoveText: movetext,
		Plies:    countPlies(movetext),
	}
	rec.OpeningName = OpeningName(b.tags["Opening"], rec.ECO)
	rec.Rated = !strings.Contains(rec.Event, "Casual")
	rec.InTournament = rec.Event != "" && !strings.Contains(strings.ToLower(rec.Event), "game")

	if color == ColorWhite {
		rec.Opponent = b.tags["Black"]
		rec.PlayerRating = parseRating(b.tags["WhiteElo"])
		rec.OpponentRating = parseRating(b.tags["BlackElo"])
		rec.RatingChange = parseRatingDiff(b.tags["WhiteRatingDiff"])
	} else {
		rec.Opponent = b.tags["White"]
		rec.PlayerRating = parseRating(b.tags["BlackElo"])
		rec.OpponentRating = parseRating(b.tags["WhiteElo"])
		rec.RatingChange = parseRatingDiff(b.tags["BlackRatingDiff"])
	}
	// Either both ratings parsed or the record is flagged
	// unrated-incomplete; rating stats skip incomplete rows.
	rec.RatedComplete = rec.PlayerRating > 0 && rec.OpponentRating > 0
	return rec, true
}

// playerColor matches the username against the White/Black tags.
// An unmatched username defaults to white so a record is still produced.
func playerColor(tags map[string]string, username string) Color {
	if strings.EqualFold(tags["Black"], username) {
		return ColorBlack
	}
	return ColorWhite
}

// resolveOutcome maps the three-way result token plus the player's color to
// the outcome from the player's perspective.
func resolveOutcome(result string, color Color) (Outcome, bool) {
	switch result {
	case "1-0":
		if color == ColorWhite {
			return OutcomeWin, true
		}
		return OutcomeLoss, true
	case "0-1":
		if color == ColorBlack {
			return OutcomeWin, true
		}
		return OutcomeLoss, true
	case "1/2-1/2":
		return OutcomeDraw, true
	}
	// "*" (unterminated) and garbage are uncategorizable
	return "", false
}

// parsePlayedAt combines the PGN date (2006.01.02) with the optional UTC
// time tag. Malformed values degrade to the zero time, never an error.
func parsePlayedAt(date, clock string) time.Time {
	if clock != "" {
		if t, err := time.Parse("2006.01.02 15:04:05", date+" "+clock); err == nil {
			return t.UTC()
		}
	}
	t, err := time.Parse("2006.01.02", date)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// parseRating coerces an Elo tag to an integer. "?" and malformed values
// yield 0 (missing). Values outside the plausible rating bound are treated
// as malformed.
func parseRating(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n >= 4000 {
		return 0
	}
	return n
}

// parseRatingDiff coerces a signed rating diff tag, nil when absent (casual
// and tournament-berserk games carry no diff).
func parseRatingDiff(s string) *int {
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "+")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func normalizeECO(eco string) string {
	if eco == "?" {
		return ""
	}
	return eco
}

// gameID extracts the game identifier from the Site tag URL
func gameID(site string) string {
	if i := strings.LastIndex(site, "/"); i >= 0 {
		return site[i+1:]
	}
	return site
}

var (
	moveNumberRe = regexp.MustCompile(`^\d+\.+$`)
	commentRe    = regexp.MustCompile(`\{[^}]*\}`)
)

// resultTokens are the game-result markers that end the movetext
var resultTokens = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}

// cleanMovetext strips inline comments and the trailing result token,
// leaving the raw move sequence.
func cleanMovetext(s string) string {
	s = commentRe.ReplaceAllString(s, "")
	fields := strings.Fields(s)
	if n := len(fields); n > 0 && resultTokens[fields[n-1]] {
		fields = fields[:n-1]
	}
	return strings.Join(fields, " ")
}

// countPlies counts SAN tokens in cleaned movetext
func countPlies(movetext string) int {
	count := 0
	for _, tok := range strings.Fields(movetext) {
		if moveNumberRe.MatchString(tok) {
			continue
		}
		count++
	}
	return count
}

// endsInMate reports whether the final move of the cleaned movetext carries
// the checkmate marker.
func endsInMate(movetext string) bool {
	fields := strings.Fields(movetext)
	if len(fields) == 0 {
		return false
	}
	return strings.HasSuffix(fields[len(fields)-1], "#")
}
