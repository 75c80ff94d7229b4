package lichess

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const pgnBody = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abcd1234"]
[Result "1-0"]

1. e4 e5 1-0
`

func TestFetchGames(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/x-chess-pgn")
		w.Write([]byte(pgnBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	since := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC)

	blob, err := client.FetchGames(context.Background(), "someuser", since, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob != pgnBody {
		t.Errorf("expected raw blob passthrough, got %q", blob)
	}
	if gotPath != "/api/games/user/someuser" {
		t.Errorf("path: got %s", gotPath)
	}
	if gotQuery["opening"] != "true" || gotQuery["tags"] != "true" {
		t.Errorf("query: expected tags/opening enabled, got %v", gotQuery)
	}
	if gotQuery["since"] != "1640995200000" {
		t.Errorf("since: got %s", gotQuery["since"])
	}
	if gotQuery["until"] == "" {
		t.Error("until: expected millisecond bound, got none")
	}
}

func TestFetchGamesOmitsZeroBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("since") || r.URL.Query().Has("until") {
			t.Errorf("zero bounds must be omitted, got query %s", r.URL.RawQuery)
		}
		w.Write([]byte(pgnBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.FetchGames(context.Background(), "someuser", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchGamesUnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.FetchGames(context.Background(), "nosuchuser", time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound in chain, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("status: expected 404, got %d", fetchErr.StatusCode)
	}
}

func TestFetchGamesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.FetchGames(context.Background(), "someuser", time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("expected error on 429")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
}

func TestFetchGamesSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			t.Errorf("authorization header: got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(pgnBody))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token")
	if _, err := client.FetchGames(context.Background(), "someuser", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
