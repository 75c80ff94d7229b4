package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"lichess-lens/database"
)

// csvHeader is the column order of the flat-file export
var csvHeader = []string{
	"lichess_id", "played_at", "color", "opponent",
	"player_rating", "opponent_rating", "rating_change",
	"result", "termination", "opening_name", "eco",
	"time_class", "time_control", "rated", "in_tournament", "plies",
}

const exportQuery = `
	SELECT lichess_id, played_at, color, opponent,
	       player_rating, opponent_rating, rating_change,
	       result, termination, opening_name, eco,
	       time_class, time_control, rated, in_tournament, plies
	FROM games
	ORDER BY played_at
`

// CSVExporter streams the games table as a flat delimited file. It reads
// through the raw database/sql connection so a large table never has to be
// materialized in memory.
type CSVExporter struct {
	db *database.DB
}

// NewCSVExporter creates a CSV exporter over the raw connection
func NewCSVExporter(db *database.DB) *CSVExporter {
	return &CSVExporter{db: db}
}

// WriteTo streams all games, oldest first, as CSV. Returns the number of
// data rows written.
func (e *CSVExporter) WriteTo(w io.Writer) (int, error) {
	rows, err := e.db.GetConn().Query(exportQuery)
	if err != nil {
		return 0, fmt.Errorf("export query failed: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	written := 0
	for rows.Next() {
		var (
			lichessID, color, opponent            string
			result, termination, openingName, eco string
			timeClass, timeControl                string
			playedAt                              time.Time
			playerRating, opponentRating, plies   int
			ratingChange                          *int
			rated, inTournament                   bool
		)
		if err := rows.Scan(
			&lichessID, &playedAt, &color, &opponent,
			&playerRating, &opponentRating, &ratingChange,
			&result, &termination, &openingName, &eco,
			&timeClass, &timeControl, &rated, &inTournament, &plies,
		); err != nil {
			return written, fmt.Errorf("export scan failed: %w", err)
		}

		ratingChangeStr := ""
		if ratingChange != nil {
			ratingChangeStr = strconv.Itoa(*ratingChange)
		}

		record := []string{
			lichessID,
			playedAt.UTC().Format(time.RFC3339),
			color,
			opponent,
			strconv.Itoa(playerRating),
			strconv.Itoa(opponentRating),
			ratingChangeStr,
			result,
			termination,
			openingName,
			eco,
			timeClass,
			timeControl,
			strconv.FormatBool(rated),
			strconv.FormatBool(inTournament),
			strconv.Itoa(plies),
		}
		if err := cw.Write(record); err != nil {
			return written, err
		}
		written++
	}
	if err := rows.Err(); err != nil {
		return written, fmt.Errorf("export iteration failed: %w", err)
	}

	cw.Flush()
	return written, cw.Error()
}
