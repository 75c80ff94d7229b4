package api

import (
	"fmt"
	"log"
	"net/http"
	"time"
)

// handleExportCSV streams the games table as a CSV download. Rows are
// written straight to the response, so the export never buffers the whole
// table in memory.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		respondWithError(w, http.StatusServiceUnavailable, "exporter not ready", nil)
		return
	}

	filename := fmt.Sprintf("%s-games-%s.csv", s.username, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	rows, err := s.exporter.WriteTo(w)
	if err != nil {
		// Headers are gone already; all we can do is log and cut the stream.
		log.Printf("⚠️  CSV export aborted after %d rows: %v", rows, err)
		return
	}

	log.Printf("📥 CSV export complete (%d rows)", rows)
}
