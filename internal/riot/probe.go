package riot

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Probe verifies the API key with a single account lookup for the tracked
// Riot ID. It is never retried: an invalid credential will not become valid
// by waiting, so the caller should terminate the process on error.
//
// Returns:
//   - nil if the key is accepted
//   - *APIError for any non-2xx response (401/403 means the key is bad)
//   - a transport error if the request itself failed
func (c *Client) Probe(ctx context.Context, gameName, tagLine string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.accountBaseURL + "/" + url.PathEscape(gameName) + "/" + url.PathEscape(tagLine)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, body)
	}
	return nil
}
