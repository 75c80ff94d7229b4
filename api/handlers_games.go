package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"lichess-lens/database"
)

const importTimeout = 30 * time.Minute

// handleGetGames returns stored games, newest first, with optional filters
func (s *Server) handleGetGames(w http.ResponseWriter, r *http.Request) {
	minLimit, maxLimit := 1, 500
	limit := getIntParam(r, "limit", 50, &minLimit, &maxLimit)
	minOffset := 0
	offset := getIntParam(r, "offset", 0, &minOffset, nil)

	timeClass := r.URL.Query().Get("time_class")
	result := r.URL.Query().Get("result")
	opening := r.URL.Query().Get("opening")

	games, err := s.repo.GetGames(timeClass, result, opening, limit, offset)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch games", err)
		return
	}

	total, err := s.repo.CountGames()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to count games", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"games":  games,
		"count":  len(games),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// handleGetGame returns a single game by its Lichess id
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "missing game id", nil)
		return
	}

	game, err := s.repo.GetGameByLichessID(id)
	if err != nil {
		var notFound *database.NotFoundError
		if errors.As(err, &notFound) {
			respondWithError(w, http.StatusNotFound, "game not found", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to fetch game", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(game)
}

// handleGetImportRuns returns recent import runs, newest first
func (s *Server) handleGetImportRuns(w http.ResponseWriter, r *http.Request) {
	minLimit, maxLimit := 1, 100
	limit := getIntParam(r, "limit", 20, &minLimit, &maxLimit)

	runs, err := s.repo.GetImportRuns(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch import runs", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleTriggerImport starts an import pass for an optional since/until
// window. The run happens in the background; progress is published on the
// SSE and WebSocket endpoints.
func (s *Server) handleTriggerImport(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		respondWithError(w, http.StatusServiceUnavailable, "importer not ready", nil)
		return
	}

	since := getDateParam(r, "since")
	until := getDateParam(r, "until")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()
		if _, err := s.importer.Run(ctx, since, until); err != nil {
			log.Printf("⚠️  Manual import failed: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "started",
		"username": s.username,
	})
}

// handleHealth is the liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, err := s.repo.CountGames()
	status := "ok"
	if err != nil {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   status,
		"username": s.username,
		"games":    total,
	})
}
