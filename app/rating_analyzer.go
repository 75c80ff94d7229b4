package app

import (
	"context"
	"log"
	"time"

	"lichess-lens/cache"
	"lichess-lens/database"
)

// movingAverageWindow smooths the rating series for charting
const movingAverageWindow = 20

// RatingAnalyzer computes rating trends per time class and keeps the
// cached copy warm
type RatingAnalyzer struct {
	repo  *database.GameRepository
	redis *cache.RedisClient
	done  chan bool
}

// NewRatingAnalyzer creates a new rating analyzer
func NewRatingAnalyzer(repo *database.GameRepository, redis *cache.RedisClient) *RatingAnalyzer {
	return &RatingAnalyzer{
		repo:  repo,
		redis: redis,
		done:  make(chan bool),
	}
}

// Start begins the refresh loop
func (ra *RatingAnalyzer) Start(interval time.Duration) {
	log.Println("📈 Rating Analyzer started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial run
	ra.runAnalysis()

	for {
		select {
		case <-ticker.C:
			ra.runAnalysis()
		case <-ra.done:
			log.Println("📈 Rating Analyzer stopped")
			return
		}
	}
}

// Stop stops the refresh loop
func (ra *RatingAnalyzer) Stop() {
	ra.done <- true
}

func (ra *RatingAnalyzer) runAnalysis() {
	trends, err := ra.Compute("")
	if err != nil {
		log.Printf("⚠️  Rating analysis failed: %v", err)
		return
	}
	if ra.redis != nil {
		if err := ra.redis.Set(context.Background(), "stats:ratings", trends, statsCacheTTL); err != nil {
			log.Printf("⚠️  Failed to cache rating trends: %v", err)
		}
	}
	log.Printf("📈 Rating analysis refreshed (%d time classes)", len(trends))
}

// Compute builds the rating trend per time class. An empty timeClass means
// all classes present in the table.
func (ra *RatingAnalyzer) Compute(timeClass string) ([]database.RatingTrend, error) {
	points, err := ra.repo.GetRatingSeries(timeClass, 0)
	if err != nil {
		return nil, err
	}

	byClass := make(map[string][]database.RatingPoint)
	order := []string{}
	for _, p := range points {
		if _, ok := byClass[p.TimeClass]; !ok {
			order = append(order, p.TimeClass)
		}
		byClass[p.TimeClass] = append(byClass[p.TimeClass], p)
	}

	trends := make([]database.RatingTrend, 0, len(order))
	for _, class := range order {
		trends = append(trends, computeTrend(class, byClass[class]))
	}
	return trends, nil
}

// computeTrend reduces one chronological rating series to its trend figures
func computeTrend(timeClass string, points []database.RatingPoint) database.RatingTrend {
	trend := database.RatingTrend{
		TimeClass: timeClass,
		Games:     len(points),
		Series:    points,
	}
	if len(points) == 0 {
		return trend
	}

	trend.Start = points[0].PlayerRating
	trend.Current = points[len(points)-1].PlayerRating
	trend.Peak = points[0].PlayerRating
	trend.Low = points[0].PlayerRating
	for _, p := range points {
		if p.PlayerRating > trend.Peak {
			trend.Peak = p.PlayerRating
		}
		if p.PlayerRating < trend.Low {
			trend.Low = p.PlayerRating
		}
	}
	trend.NetChange = trend.Current - trend.Start
	trend.SlopePer100 = slopePer100(points)
	trend.MovingAvg = movingAverage(points, movingAverageWindow)
	return trend
}

// slopePer100 fits rating = a + b*index by least squares and reports b
// scaled to rating points per 100 games.
func slopePer100(points []database.RatingPoint) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}

	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i, p := range points {
		x := float64(i)
		y := float64(p.PlayerRating)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}
	slope := (float64(n)*sumXY - sumX*sumY) / denominator
	return slope * 100
}

// movingAverage returns the trailing window mean for each point
func movingAverage(points []database.RatingPoint, window int) []float64 {
	if len(points) == 0 {
		return nil
	}
	out := make([]float64, len(points))
	sum := 0.0
	for i, p := range points {
		sum += float64(p.PlayerRating)
		if i >= window {
			sum -= float64(points[i-window].PlayerRating)
		}
		count := i + 1
		if count > window {
			count = window
		}
		out[i] = sum / float64(count)
	}
	return out
}
