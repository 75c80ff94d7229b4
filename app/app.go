package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"lichess-lens/api"
	"lichess-lens/cache"
	"lichess-lens/config"
	"lichess-lens/database"
	"lichess-lens/export"
	"lichess-lens/lichess"
	"lichess-lens/llm"
	"lichess-lens/notifications"
	"lichess-lens/realtime"
)

// statsCacheTTL bounds how long analyzer output stays valid in Redis
const statsCacheTTL = 30 * time.Minute

// App represents the main application
type App struct {
	config         *config.Config
	db             *database.Database
	rawDB          *database.DB
	redis          *cache.RedisClient
	repo           *database.GameRepository
	webhookManager *notifications.WebhookManager
	broker         *realtime.Broker
	hub            *realtime.Hub
	importer       *Importer
	ratingAnal     *RatingAnalyzer
	correlAnal     *CorrelationAnalyzer
	evaluator      *ScorecardEvaluator
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config: cfg,
	}
}

// Start starts the application
func (a *App) Start() error {
	if a.config.Username == "" {
		return fmt.Errorf("LICHESS_USERNAME is required")
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	// Separate raw connection for streaming exports
	rawDB, err := database.NewConnection(database.Config{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		return fmt.Errorf("raw database connection failed: %w", err)
	}
	a.rawDB = rawDB

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)

	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 3. Schema
	a.repo = database.NewGameRepository(a.db)
	if err := a.repo.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 4. Webhook Manager
	a.webhookManager = notifications.NewWebhookManager(a.config.WebhookURL)

	// 5. Realtime push: SSE broker + WebSocket hub
	a.broker = realtime.NewBroker()
	go a.broker.Run()
	a.hub = realtime.NewHub()

	// 6. Lichess client and import pipeline
	client := lichess.NewClient(a.config.LichessURL, a.config.APIToken)
	a.importer = NewImporter(client, a.repo, a.redis, a.config, a.broker, a.hub)
	log.Printf("✅ Import pipeline ready for %s", a.config.Username)

	// 7. LLM client if enabled
	var llmClient *llm.Client
	if a.config.LLM.Enabled {
		llmClient = llm.NewClient(a.config.LLM.Endpoint, a.config.LLM.APIKey, a.config.LLM.Model)
		log.Printf("✅ LLM Insights ENABLED (Model: %s)", a.config.LLM.Model)
	} else {
		log.Println("ℹ️  LLM Insights DISABLED")
	}

	// 8. Background analyzers
	refreshInterval := time.Duration(a.config.RefreshIntervalMinutes) * time.Minute
	log.Println("🚀 Starting background analyzers...")

	a.ratingAnal = NewRatingAnalyzer(a.repo, a.redis)
	go a.ratingAnal.Start(refreshInterval)

	a.correlAnal = NewCorrelationAnalyzer(a.repo, a.redis)
	go a.correlAnal.Start(refreshInterval)

	a.evaluator = NewScorecardEvaluator(a.repo, a.ratingAnal, a.correlAnal)

	// 9. API server
	exporter := export.NewCSVExporter(a.rawDB)
	apiServer := api.NewServer(a.repo, exporter, a.broker, a.hub, a.redis, llmClient, a.config.LLM.Enabled, a.config.Username)
	apiServer.SetImporter(a.importer)
	apiServer.SetAnalyzers(a.ratingAnal, a.correlAnal, a.evaluator)

	go func() {
		if err := apiServer.Start(a.config.ServerPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// Setup WaitGroup for goroutines
	var wg sync.WaitGroup

	// 10. Import loop: one pass now, then periodic incremental syncs
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.runSyncLoop(ctx)
	}()

	// 11. Wait for interrupt and perform graceful shutdown
	err = a.gracefulShutdown(cancel)
	wg.Wait()
	return err
}

// runSyncLoop performs the initial import and then keeps the table in sync
// on the configured interval. Each incremental pass starts just after the
// newest stored game so already-imported games are fetched at most once.
func (a *App) runSyncLoop(ctx context.Context) {
	a.runSync(ctx)

	interval := time.Duration(a.config.SyncIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runSync(ctx)
		case <-ctx.Done():
			log.Println("📥 Sync loop stopped")
			return
		}
	}
}

func (a *App) runSync(ctx context.Context) {
	since := a.config.ImportSince
	if latest, err := a.repo.LatestGameTime(); err == nil && !latest.IsZero() {
		// Resume one second past the newest stored game; the unique index
		// still catches any overlap.
		since = latest.Add(time.Second)
	}

	run, err := a.importer.Run(ctx, since, a.config.ImportUntil)
	if err != nil {
		log.Printf("⚠️  Sync failed: %v", err)
	}
	if run != nil {
		a.webhookManager.NotifyImportRun(run)
	}
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown(cancel context.CancelFunc) error {
	// Setup signal handling
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	// Wait for interrupt signal
	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	// Cancel context to stop all goroutines
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown tasks with timeout
	shutdownComplete := make(chan struct{})
	go func() {
		if a.ratingAnal != nil {
			fmt.Println("📈 Stopping rating analyzer...")
			a.ratingAnal.Stop()
		}
		if a.correlAnal != nil {
			fmt.Println("🔗 Stopping correlation analyzer...")
			a.correlAnal.Stop()
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}
		if a.rawDB != nil {
			if err := a.rawDB.Close(); err != nil {
				log.Printf("Error closing export connection: %v", err)
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	// Wait for shutdown to complete or timeout
	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
