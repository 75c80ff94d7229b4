package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"lichess-lens/cache"
	"lichess-lens/database"
	"lichess-lens/export"
	"lichess-lens/llm"
	"lichess-lens/realtime"
)

// Server handles HTTP API requests
type Server struct {
	repo       *database.GameRepository
	exporter   *export.CSVExporter
	broker     *realtime.Broker
	hub        *realtime.Hub
	redis      *cache.RedisClient
	llmClient  *llm.Client
	llmEnabled bool
	username   string

	importer     ImportRunner
	ratings      RatingTrendProvider
	correlations CorrelationProvider
	form         FormEvaluator
}

// ImportRunner triggers one import pass over a time window
type ImportRunner interface {
	Run(ctx context.Context, since, until time.Time) (*database.ImportRun, error)
}

// RatingTrendProvider computes rating trends per time class
type RatingTrendProvider interface {
	Compute(timeClass string) ([]database.RatingTrend, error)
}

// CorrelationProvider computes opponent-strength correlations
type CorrelationProvider interface {
	Compute() ([]database.CorrelationEntry, error)
}

// FormEvaluator scores the player's current form
type FormEvaluator interface {
	Report() (database.FormReport, error)
}

// NewServer creates a new API server instance
func NewServer(repo *database.GameRepository, exporter *export.CSVExporter, broker *realtime.Broker, hub *realtime.Hub, redis *cache.RedisClient, llmClient *llm.Client, llmEnabled bool, username string) *Server {
	return &Server{
		repo:       repo,
		exporter:   exporter,
		broker:     broker,
		hub:        hub,
		redis:      redis,
		llmClient:  llmClient,
		llmEnabled: llmEnabled,
		username:   username,
	}
}

// SetImporter injects the import pipeline used by the manual trigger route
func (s *Server) SetImporter(importer ImportRunner) {
	s.importer = importer
}

// SetAnalyzers injects the background analyzers the analytics routes read from
func (s *Server) SetAnalyzers(ratings RatingTrendProvider, correlations CorrelationProvider, form FormEvaluator) {
	s.ratings = ratings
	s.correlations = correlations
	s.form = form
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Register routes
	mux.Handle("GET /api/events", s.broker) // SSE endpoint
	mux.Handle("GET /api/live", s.hub)      // WebSocket endpoint

	// Game Routes
	mux.HandleFunc("GET /api/games", s.handleGetGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)

	// Import Routes
	mux.HandleFunc("POST /api/import", s.handleTriggerImport)
	mux.HandleFunc("GET /api/imports", s.handleGetImportRuns)

	// Statistics Routes
	mux.HandleFunc("GET /api/stats/summary", s.handleGetSummary)
	mux.HandleFunc("GET /api/stats/openings", s.handleGetOpeningStats)
	mux.HandleFunc("GET /api/stats/colors", s.handleGetColorStats)
	mux.HandleFunc("GET /api/stats/terminations", s.handleGetTerminationStats)
	mux.HandleFunc("GET /api/stats/months", s.handleGetMonthlyStats)
	mux.HandleFunc("GET /api/stats/opponents", s.handleGetOpponentStats)
	mux.HandleFunc("GET /api/stats/timeclasses", s.handleGetTimeClassStats)
	mux.HandleFunc("GET /api/stats/activity", s.handleGetActivityStats)

	// Analytics Routes
	mux.HandleFunc("GET /api/analytics/ratings", s.handleGetRatingTrends)
	mux.HandleFunc("GET /api/analytics/correlations", s.handleGetCorrelations)
	mux.HandleFunc("GET /api/analytics/form", s.handleGetForm)

	// Coach Routes (LLM)
	mux.HandleFunc("GET /api/insights", s.handleGetInsights)
	mux.HandleFunc("GET /api/insights/stream", s.handleGetInsightsStream)

	// Export Routes
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Serve Static Files (Public UI)
	fs := http.FileServer(http.Dir("./public"))
	mux.Handle("GET /", fs)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// Handlers are distributed across multiple files:
// - handlers_games.go: stored games, import runs, manual import trigger
// - handlers_stats.go: descriptive aggregates over the games table
// - handlers_analytics.go: analyzer output and LLM insights
// - handlers_export.go: CSV download
