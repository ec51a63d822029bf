package riot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Benji12358/LOL-dashboard/internal/config"
)

// newTestClient builds a client pointed at a stub server, with a throttle
// short enough to keep tests fast.
func newTestClient(t *testing.T, baseURL string, maxAttempts int) *Client {
	t.Helper()

	client, err := NewClient(config.RiotConfig{
		APIKey:           "RGAPI-test-key",
		AccountBaseURL:   baseURL + "/accounts",
		MatchBaseURL:     baseURL + "/matches",
		LeagueBaseURL:    baseURL + "/league",
		ThrottleInterval: time.Millisecond,
		RequestTimeout:   5 * time.Second,
		MaxAttempts:      maxAttempts,
	}, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// TestClient_RequiresAPIKey verifies that a client cannot be built without a key
func TestClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.RiotConfig{ThrottleInterval: time.Second, MaxAttempts: 1}, nil)
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

// TestClient_SetsTokenHeader verifies every request carries the API key header
func TestClient_SetsTokenHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Riot-Token"); got != "RGAPI-test-key" {
			t.Errorf("Expected X-Riot-Token header, got %q", got)
		}
		w.Write([]byte(`{"puuid":"abc","gameName":"Player","tagLine":"EUW"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	account, err := client.AccountByRiotID(context.Background(), "Player", "EUW")
	if err != nil {
		t.Fatalf("AccountByRiotID failed: %v", err)
	}
	if account.PUUID != "abc" {
		t.Errorf("Expected puuid abc, got %q", account.PUUID)
	}
}

// TestClient_MatchIDsPagination verifies the start/count cursor parameters
func TestClient_MatchIDsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start") != "200" || q.Get("count") != "100" {
			t.Errorf("Expected start=200&count=100, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`["EUW1_1","EUW1_2"]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	ids, err := client.MatchIDs(context.Background(), "puuid-1", 200, 100)
	if err != nil {
		t.Fatalf("MatchIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "EUW1_1" {
		t.Errorf("Unexpected ids: %v", ids)
	}
}

// TestClient_RetriesOnFailure verifies that non-2xx responses are retried and
// the structured error body is parsed
func TestClient_RetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":{"status_code":503,"message":"Service unavailable"}}`))
			return
		}
		w.Write([]byte(`[{"queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)

	entries, err := client.LeagueEntries(context.Background(), "puuid-1")
	if err != nil {
		t.Fatalf("LeagueEntries failed after retries: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 calls (2 failures + 1 success), got %d", got)
	}
	if len(entries) != 1 || entries[0].Tier != "GOLD" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

// TestClient_RetryExhausted verifies the bounded retry gives up with a
// terminal error instead of recursing forever
func TestClient_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":{"status_code":429,"message":"Rate limit exceeded"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	_, err := client.Match(context.Background(), "EUW1_42")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got: %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected wrapped *APIError, got: %v", err)
	}
	if apiErr.Code != 429 || apiErr.Message != "Rate limit exceeded" {
		t.Errorf("Unexpected parsed error body: %+v", apiErr)
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", got)
	}
}

// TestClient_ThrottleSpacing verifies the minimum inter-call spacing: N calls
// must take at least (N-1) throttle intervals
func TestClient_ThrottleSpacing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["EUW1_1"]`))
	}))
	defer server.Close()

	interval := 20 * time.Millisecond
	client, err := NewClient(config.RiotConfig{
		APIKey:           "RGAPI-test-key",
		MatchBaseURL:     server.URL,
		ThrottleInterval: interval,
		RequestTimeout:   5 * time.Second,
		MaxAttempts:      1,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	const n = 6
	start := time.Now()
	for i := 0; i < n; i++ {
		if _, err := client.MatchIDs(context.Background(), "puuid-1", 0, 100); err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	min := time.Duration(n-1) * interval
	if elapsed < min {
		t.Errorf("Requests completed too fast: %v < %v (throttle not enforced)", elapsed, min)
	}
}

// TestClient_ContextCancellation verifies a cancelled context stops the retry
// loop promptly
func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":{"status_code":500,"message":"boom"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Match(ctx, "EUW1_42")
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded, got: %v", err)
	}
}
