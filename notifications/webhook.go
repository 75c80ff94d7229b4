package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"lichess-lens/database"
	"lichess-lens/helpers"
)

const (
	maxDeliveryAttempts = 3
	retryDelay          = 5 * time.Second
)

// WebhookManager posts an import summary to the configured URL after each
// import run. With no URL configured every call is a no-op.
type WebhookManager struct {
	url    string
	client *http.Client
}

// WebhookPayload represents the JSON payload sent to the webhook
type WebhookPayload struct {
	Username      string     `json:"username"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at"`
	Since         *time.Time `json:"since,omitempty"`
	Until         *time.Time `json:"until,omitempty"`
	ParsedGames   int        `json:"parsed_games"`
	SavedGames    int        `json:"saved_games"`
	Duplicates    int        `json:"duplicates"`
	DroppedBlocks int        `json:"dropped_blocks"`
	Error         string     `json:"error,omitempty"`
	Message       string     `json:"message"`
}

// NewWebhookManager creates a new webhook manager
func NewWebhookManager(url string) *WebhookManager {
	return &WebhookManager{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyImportRun sends the run summary. Delivery is async; failures are
// logged, never surfaced to the import pipeline.
func (wm *WebhookManager) NotifyImportRun(run *database.ImportRun) {
	if wm.url == "" {
		return
	}

	payload := wm.CreatePayload(run)
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Failed to marshal webhook payload: %v", err)
		return
	}

	go wm.deliver(payloadBytes)
}

// CreatePayload generates the webhook payload from an import run
func (wm *WebhookManager) CreatePayload(run *database.ImportRun) WebhookPayload {
	var message string
	if run.Status == "OK" {
		message = fmt.Sprintf("✅ Import complete for %s: %d parsed, %d saved, %d duplicates, %d dropped (%.1fs)",
			run.Username, run.ParsedGames, run.SavedGames, run.Duplicates, run.DroppedBlocks,
			run.FinishedAt.Sub(run.StartedAt).Seconds())
	} else {
		message = fmt.Sprintf("❌ Import failed for %s: %s", run.Username, run.Error)
	}
	if run.DroppedBlocks > 0 && run.ParsedGames+run.DroppedBlocks > 0 {
		dropPct := 100.0 * float64(run.DroppedBlocks) / float64(run.ParsedGames+run.DroppedBlocks)
		message += fmt.Sprintf(" | drop rate %s", helpers.FormatWinRate(dropPct))
	}

	return WebhookPayload{
		Username:      run.Username,
		Status:        run.Status,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		Since:         run.Since,
		Until:         run.Until,
		ParsedGames:   run.ParsedGames,
		SavedGames:    run.SavedGames,
		Duplicates:    run.Duplicates,
		DroppedBlocks: run.DroppedBlocks,
		Error:         run.Error,
		Message:       message,
	}
}

func (wm *WebhookManager) deliver(payload []byte) {
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		req, reqErr := http.NewRequest(http.MethodPost, wm.url, bytes.NewBuffer(payload))
		if reqErr != nil {
			log.Printf("⚠️  Invalid webhook request: %v", reqErr)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "lichess-lens/1.0")

		resp, err = wm.client.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			log.Printf("🔹 Webhook delivered (attempt %d/%d)", attempt, maxDeliveryAttempts)
			return
		}
		if resp != nil {
			resp.Body.Close()
		}

		if attempt < maxDeliveryAttempts {
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		log.Printf("⚠️  Webhook delivery failed: %v", err)
	} else if resp != nil {
		log.Printf("⚠️  Webhook delivery failed: status %d", resp.StatusCode)
	}
}
