package api

import (
	"encoding/json"
	"net/http"
)

// handleGetSummary returns the lifetime summary row plus the form scorecard
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	overall, err := s.repo.GetOverallStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute summary", err)
		return
	}

	response := map[string]interface{}{
		"username": s.username,
		"overall":  overall,
	}
	if s.form != nil {
		if report, err := s.form.Report(); err == nil {
			response["form"] = report
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetOpeningStats returns per-opening results. Low-volume openings
// are folded out via min_games.
func (s *Server) handleGetOpeningStats(w http.ResponseWriter, r *http.Request) {
	minOne := 1
	maxLimit := 200
	minGames := getIntParam(r, "min_games", 5, &minOne, nil)
	limit := getIntParam(r, "limit", 25, &minOne, &maxLimit)
	color := r.URL.Query().Get("color")
	if color != "" && color != "white" && color != "black" {
		respondWithError(w, http.StatusBadRequest, "color must be white or black", nil)
		return
	}

	stats, err := s.repo.GetOpeningStats(color, minGames, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute opening stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"openings":  stats,
		"count":     len(stats),
		"color":     color,
		"min_games": minGames,
	})
}

// handleGetColorStats returns the white/black performance split
func (s *Server) handleGetColorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetColorStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute color stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"colors": stats})
}

// handleGetTerminationStats returns the breakdown of how games ended
func (s *Server) handleGetTerminationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetTerminationStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute termination stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"terminations": stats})
}

// handleGetMonthlyStats returns the month-by-month trend
func (s *Server) handleGetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetMonthlyStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute monthly stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"months": stats,
		"count":  len(stats),
	})
}

// handleGetOpponentStats returns the most frequent opponents
func (s *Server) handleGetOpponentStats(w http.ResponseWriter, r *http.Request) {
	minOne := 1
	maxLimit := 200
	limit := getIntParam(r, "limit", 25, &minOne, &maxLimit)

	stats, err := s.repo.GetOpponentStats(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute opponent stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"opponents": stats,
		"count":     len(stats),
	})
}

// handleGetTimeClassStats returns the per-speed performance split
func (s *Server) handleGetTimeClassStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetTimeClassStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute time class stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"time_classes": stats})
}

// handleGetActivityStats returns games per local weekday and hour
func (s *Server) handleGetActivityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.GetActivityStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute activity stats", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"activity": stats})
}
