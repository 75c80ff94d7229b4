package app

import (
	"context"
	"log"
	"math"
	"time"

	"lichess-lens/cache"
	"lichess-lens/database"
)

// minCorrelationSamples is the smallest sample the coefficient is reported
// for; below it the estimate is noise
const minCorrelationSamples = 10

// CorrelationAnalyzer computes opponent-strength correlations over the
// games table
type CorrelationAnalyzer struct {
	repo  *database.GameRepository
	redis *cache.RedisClient
	done  chan bool
}

// NewCorrelationAnalyzer creates a new correlation analyzer
func NewCorrelationAnalyzer(repo *database.GameRepository, redis *cache.RedisClient) *CorrelationAnalyzer {
	return &CorrelationAnalyzer{
		repo:  repo,
		redis: redis,
		done:  make(chan bool),
	}
}

// Start begins the analysis loop
func (ca *CorrelationAnalyzer) Start(interval time.Duration) {
	log.Println("🔗 Correlation Analyzer started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial run
	ca.runAnalysis()

	for {
		select {
		case <-ticker.C:
			ca.runAnalysis()
		case <-ca.done:
			log.Println("🔗 Correlation Analyzer stopped")
			return
		}
	}
}

// Stop stops the analysis loop
func (ca *CorrelationAnalyzer) Stop() {
	ca.done <- true
}

func (ca *CorrelationAnalyzer) runAnalysis() {
	entries, err := ca.Compute()
	if err != nil {
		log.Printf("⚠️  Correlation analysis failed: %v", err)
		return
	}
	if ca.redis != nil {
		if err := ca.redis.Set(context.Background(), "stats:correlations", entries, statsCacheTTL); err != nil {
			log.Printf("⚠️  Failed to cache correlations: %v", err)
		}
	}
	log.Printf("🔗 Correlation analysis refreshed (%d slices)", len(entries))
}

// Compute builds the overall correlation entry plus one per time class
// with enough samples.
func (ca *CorrelationAnalyzer) Compute() ([]database.CorrelationEntry, error) {
	samples, err := ca.repo.GetCorrelationSamples("")
	if err != nil {
		return nil, err
	}

	byClass := make(map[string][]database.CorrelationSample)
	order := []string{}
	for _, s := range samples {
		if _, ok := byClass[s.TimeClass]; !ok {
			order = append(order, s.TimeClass)
		}
		byClass[s.TimeClass] = append(byClass[s.TimeClass], s)
	}

	entries := []database.CorrelationEntry{computeCorrelation("all", samples)}
	for _, class := range order {
		if len(byClass[class]) < minCorrelationSamples {
			continue
		}
		entries = append(entries, computeCorrelation(class, byClass[class]))
	}
	return entries, nil
}

// computeCorrelation reduces one sample slice to a correlation entry
func computeCorrelation(timeClass string, samples []database.CorrelationSample) database.CorrelationEntry {
	entry := database.CorrelationEntry{
		TimeClass: timeClass,
		Samples:   len(samples),
	}
	if len(samples) == 0 {
		return entry
	}

	opponent := make([]float64, len(samples))
	gap := make([]float64, len(samples))
	score := make([]float64, len(samples))

	sumOpp, sumGap := 0.0, 0.0
	strongerScore, strongerN := 0.0, 0
	weakerScore, weakerN := 0.0, 0
	for i, s := range samples {
		opponent[i] = float64(s.OpponentRating)
		gap[i] = float64(s.EloDiff)
		score[i] = s.Score
		sumOpp += float64(s.OpponentRating)
		sumGap += float64(s.EloDiff)
		if s.EloDiff < 0 {
			strongerScore += s.Score
			strongerN++
		} else {
			weakerScore += s.Score
			weakerN++
		}
	}

	entry.AvgOpponentRating = sumOpp / float64(len(samples))
	entry.AvgRatingGap = sumGap / float64(len(samples))
	if strongerN > 0 {
		entry.ScoreAgainstStronger = strongerScore / float64(strongerN)
	}
	if weakerN > 0 {
		entry.ScoreAgainstWeaker = weakerScore / float64(weakerN)
	}

	if r := computePearsonCorrelation(opponent, score); !math.IsNaN(r) {
		entry.OpponentRatingVsScore = r
	}
	if r := computePearsonCorrelation(gap, score); !math.IsNaN(r) {
		entry.RatingGapVsScore = r
	}
	return entry
}

// computePearsonCorrelation calculates the Pearson correlation coefficient between two datasets
func computePearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < minCorrelationSamples {
		return math.NaN()
	}

	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := float64(n)*sumXY - sumX*sumY
	denominator := math.Sqrt((float64(n)*sumX2 - sumX*sumX) * (float64(n)*sumY2 - sumY*sumY))

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}
