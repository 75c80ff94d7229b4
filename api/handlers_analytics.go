package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"lichess-lens/database"
	"lichess-lens/llm"
)

// handleGetRatingTrends returns the rating trajectory per time class. The
// cached copy from the background analyzer is preferred; a cache miss
// falls back to computing live.
func (s *Server) handleGetRatingTrends(w http.ResponseWriter, r *http.Request) {
	timeClass := r.URL.Query().Get("time_class")

	if timeClass == "" && s.redis != nil {
		var cached []database.RatingTrend
		if err := s.redis.Get(r.Context(), "stats:ratings", &cached); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"trends": cached,
				"cached": true,
			})
			return
		}
	}

	if s.ratings == nil {
		respondWithError(w, http.StatusServiceUnavailable, "rating analyzer not ready", nil)
		return
	}

	trends, err := s.ratings.Compute(timeClass)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute rating trends", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"trends": trends,
		"cached": false,
	})
}

// handleGetCorrelations returns the opponent-strength correlation table
func (s *Server) handleGetCorrelations(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		var cached []database.CorrelationEntry
		if err := s.redis.Get(r.Context(), "stats:correlations", &cached); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"correlations": cached,
				"cached":       true,
			})
			return
		}
	}

	if s.correlations == nil {
		respondWithError(w, http.StatusServiceUnavailable, "correlation analyzer not ready", nil)
		return
	}

	entries, err := s.correlations.Compute()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to compute correlations", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"correlations": entries,
		"cached":       false,
	})
}

// handleGetForm returns the form scorecard
func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	if s.form == nil {
		respondWithError(w, http.StatusServiceUnavailable, "scorecard evaluator not ready", nil)
		return
	}

	report, err := s.form.Report()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to evaluate form", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// buildInsightsPrompt assembles the coach prompt from the stored aggregates
func (s *Server) buildInsightsPrompt() (string, error) {
	overall, err := s.repo.GetOverallStats()
	if err != nil {
		return "", err
	}
	if overall.TotalGames == 0 {
		return "", fmt.Errorf("no games imported yet")
	}

	colors, err := s.repo.GetColorStats()
	if err != nil {
		return "", err
	}
	openings, err := s.repo.GetOpeningStats("", 5, 10)
	if err != nil {
		return "", err
	}
	terminations, err := s.repo.GetTerminationStats()
	if err != nil {
		return "", err
	}
	months, err := s.repo.GetMonthlyStats()
	if err != nil {
		return "", err
	}

	return llm.FormatInsightsPrompt(llm.InsightsInput{
		Username:     s.username,
		Overall:      overall,
		Colors:       colors,
		Openings:     openings,
		Terminations: terminations,
		Months:       months,
	}), nil
}

// handleGetInsights runs the LLM coach over the stored aggregates
func (s *Server) handleGetInsights(w http.ResponseWriter, r *http.Request) {
	if !s.llmEnabled || s.llmClient == nil {
		respondWithError(w, http.StatusServiceUnavailable, "LLM insights disabled", nil)
		return
	}

	prompt, err := s.buildInsightsPrompt()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build insights prompt", err)
		return
	}

	analysis, err := s.llmClient.Analyze(r.Context(), prompt)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "LLM analysis failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"username": s.username,
		"insights": analysis,
	})
}

// handleGetInsightsStream streams the LLM coach response over SSE
func (s *Server) handleGetInsightsStream(w http.ResponseWriter, r *http.Request) {
	if !s.llmEnabled || s.llmClient == nil {
		respondWithError(w, http.StatusServiceUnavailable, "LLM insights disabled", nil)
		return
	}

	prompt, err := s.buildInsightsPrompt()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build insights prompt", err)
		return
	}

	flusher, ok := setupSSE(w)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	err = s.llmClient.AnalyzeStream(r.Context(), prompt, func(chunk string) error {
		data, err := json.Marshal(map[string]string{"content": chunk})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		log.Printf("⚠️  Insights stream aborted: %v", err)
		return
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
