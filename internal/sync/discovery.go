package sync

import "context"

// pageSize is the match-ids endpoint's maximum page size; a short page
// signals that the history is exhausted.
const pageSize = 100

// MatchLister is the single client primitive discovery needs.
type MatchLister interface {
	MatchIDs(ctx context.Context, puuid string, start, count int) ([]string, error)
}

// Discover pages through the full match history for an account, preserving
// the API-native (most-recent-first) order.
func Discover(ctx context.Context, api MatchLister, puuid string) ([]string, error) {
	var all []string
	for start := 0; ; start += pageSize {
		page, err := api.MatchIDs(ctx, puuid, start, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
