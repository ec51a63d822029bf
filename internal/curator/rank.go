package curator

import (
	"context"
	"fmt"

	"github.com/Benji12358/LOL-dashboard/internal/riot"
)

const soloQueue = "RANKED_SOLO_5x5"

// UnrankedTier is stored for players with no ranked solo-queue entry.
const UnrankedTier = "Unranked"

// rankResult distinguishes a rank served from the store from one fetched
// against the API, so the store-then-API branching lives in exactly one place.
type rankResult struct {
	rank   string
	cached bool
}

// ResolveRank returns the current rank string for a player: the store's copy
// when one exists, otherwise a fresh ranked-queue lookup. The fresh lookup is
// deliberately not memoized here; once the player's first curated row is
// persisted the store serves every later resolution.
func (c *Curator) ResolveRank(ctx context.Context, puuid string) (string, error) {
	res, err := c.lookupRank(ctx, puuid)
	if err != nil {
		return "", err
	}
	if !res.cached {
		c.logger.Debug("fetched rank from api", "puuid", puuid, "rank", res.rank)
	}
	return res.rank, nil
}

func (c *Curator) lookupRank(ctx context.Context, puuid string) (rankResult, error) {
	rank, ok, err := c.store.KnownRank(ctx, puuid)
	if err != nil {
		return rankResult{}, fmt.Errorf("rank lookup in store: %w", err)
	}
	if ok {
		return rankResult{rank: rank, cached: true}, nil
	}

	entries, err := c.api.LeagueEntries(ctx, puuid)
	if err != nil {
		return rankResult{}, fmt.Errorf("rank lookup via api: %w", err)
	}
	return rankResult{rank: RankFromEntries(entries)}, nil
}

// RankFromEntries extracts the solo-queue rank string from league standings,
// e.g. "GOLD_II". Players with no solo-queue entry are Unranked.
func RankFromEntries(entries []riot.LeagueEntry) string {
	for _, entry := range entries {
		if entry.QueueType == soloQueue {
			return entry.Tier + "_" + entry.Rank
		}
	}
	return UnrankedTier
}
