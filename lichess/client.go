package lichess

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUserNotFound is returned when the export endpoint reports an unknown
// username.
var ErrUserNotFound = errors.New("lichess user not found")

// FetchError is the single error kind the fetcher surfaces: network or
// service failure on the one outbound export request. The run aborts on it;
// there is no retry or partial-result recovery.
type FetchError struct {
	Username   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching games for %q: http %d: %v", e.Username, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetching games for %q: %v", e.Username, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches game exports from the lichess API
type Client struct {
	http *resty.Client
}

// NewClient creates a client for the given lichess base URL. The token is
// optional; the export endpoint is public but a token raises the rate limit.
func NewClient(baseURL, token string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("User-Agent", "lichess-lens/1.0")
	client.SetHeader("Accept", "application/x-chess-pgn")
	client.SetTimeout(5 * time.Minute) // a full archive export can be slow
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Client{http: client}
}

// FetchGames issues one GET to the game-export endpoint for the username
// and inclusive date range and returns the raw multi-game PGN blob in the
// service's chronological order. Zero time bounds are omitted from the
// request. All failure modes surface as a single *FetchError.
func (c *Client) FetchGames(ctx context.Context, username string, since, until time.Time) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParams(map[string]string{
			"tags":    "true",
			"clocks":  "false",
			"evals":   "false",
			"opening": "true",
		})
	if !since.IsZero() {
		req.SetQueryParam("since", strconv.FormatInt(since.UnixMilli(), 10))
	}
	if !until.IsZero() {
		req.SetQueryParam("until", strconv.FormatInt(until.UnixMilli(), 10))
	}

	log.Printf("📥 Fetching games for %s from lichess...", username)
	resp, err := req.Get("/api/games/user/{username}")
	if err != nil {
		return "", &FetchError{Username: username, Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", &FetchError{Username: username, StatusCode: resp.StatusCode(), Err: ErrUserNotFound}
	}
	if resp.IsError() {
		return "", &FetchError{
			Username:   username,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected response: %s", resp.Status()),
		}
	}

	blob := resp.String()
	log.Printf("✅ Fetched %d bytes of PGN for %s", len(blob), username)
	return blob, nil
}
