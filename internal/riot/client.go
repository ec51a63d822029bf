package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/Benji12358/LOL-dashboard/internal/config"
)

// ErrRetryExhausted is returned once a request has failed on every allowed
// attempt. It wraps the last underlying failure.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// Client is a rate-limited Riot API client. Every call, success or failure,
// consumes one throttle token, which keeps the process inside the external
// budget of 100 calls per 120 seconds.
type Client struct {
	apiKey         string
	accountBaseURL string
	matchBaseURL   string
	leagueBaseURL  string

	httpClient  *http.Client
	limiter     *rate.Limiter
	throttle    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewClient builds a client from the riot section of the configuration.
func NewClient(cfg config.RiotConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("riot: API key not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiKey:         cfg.APIKey,
		accountBaseURL: cfg.AccountBaseURL,
		matchBaseURL:   cfg.MatchBaseURL,
		leagueBaseURL:  cfg.LeagueBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:     rate.NewLimiter(rate.Every(cfg.ThrottleInterval), 1),
		throttle:    cfg.ThrottleInterval,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
	}, nil
}

// get issues one throttled GET and retries on any failure except context
// expiry. Retries are bounded with exponential backoff between attempts;
// after the last attempt the error wraps ErrRetryExhausted.
func (c *Client) get(ctx context.Context, rawURL string, params url.Values, result any) error {
	// The first retry waits one more throttle interval, later ones grow
	// exponentially up to the full rate window.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.throttle
	bo.MaxInterval = 2 * time.Minute

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, retryAfter, err := c.do(ctx, rawURL, params)
		if err == nil {
			return json.Unmarshal(body, result)
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("riot api call failed",
				"url", rawURL,
				"attempt", attempt,
				"status_code", apiErr.Code,
				"message", apiErr.Message)
		} else {
			c.logger.Warn("riot api call failed", "url", rawURL, "attempt", attempt, "error", err)
		}

		if attempt == c.maxAttempts {
			break
		}

		wait := bo.NextBackOff()
		if retryAfter > wait {
			wait = retryAfter
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, c.maxAttempts, lastErr)
}

// do performs a single HTTP request. On non-2xx it parses the structured
// error body and reports any Retry-After hint from the server.
func (c *Client) do(ctx context.Context, rawURL string, params url.Values) ([]byte, time.Duration, error) {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var retryAfter time.Duration
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, retryAfter, parseAPIError(resp.StatusCode, body)
	}

	return body, 0, nil
}

func parseAPIError(httpStatus int, body []byte) *APIError {
	apiErr := &APIError{HTTPStatus: httpStatus, Code: httpStatus}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Status.StatusCode != 0 {
		apiErr.Code = parsed.Status.StatusCode
		apiErr.Message = parsed.Status.Message
	}
	return apiErr
}

// AccountByRiotID resolves a Riot ID (gameName#tagLine) to an account.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := c.accountBaseURL + "/" + url.PathEscape(gameName) + "/" + url.PathEscape(tagLine)

	var account Account
	if err := c.get(ctx, u, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// MatchIDs fetches one page of match identifiers for a player.
func (c *Client) MatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error) {
	u := c.matchBaseURL + "/by-puuid/" + url.PathEscape(puuid) + "/ids"
	params := url.Values{
		"start": {strconv.Itoa(start)},
		"count": {strconv.Itoa(count)},
	}

	var ids []string
	if err := c.get(ctx, u, params, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Match fetches the full nested payload for one match.
func (c *Client) Match(ctx context.Context, matchID string) (*MatchPayload, error) {
	u := c.matchBaseURL + "/" + url.PathEscape(matchID)

	var match MatchPayload
	if err := c.get(ctx, u, nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// LeagueEntries fetches the ranked queue standings for a player.
func (c *Client) LeagueEntries(ctx context.Context, puuid string) ([]LeagueEntry, error) {
	u := c.leagueBaseURL + "/" + url.PathEscape(puuid)

	var entries []LeagueEntry
	if err := c.get(ctx, u, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
