package curator

import (
	"context"
	"testing"

	"github.com/Benji12358/LOL-dashboard/internal/riot"
)

// TestResolveRank_StoreHit verifies a stored rank is served without touching
// the API
func TestResolveRank_StoreHit(t *testing.T) {
	store := &fakeRankStore{ranks: map[string]string{"puuid-1": "PLATINUM_III"}}
	api := &fakeLeagueAPI{}
	cur := testCurator(store, api)

	rank, err := cur.ResolveRank(context.Background(), "puuid-1")
	if err != nil {
		t.Fatalf("ResolveRank failed: %v", err)
	}
	if rank != "PLATINUM_III" {
		t.Errorf("Expected PLATINUM_III, got %q", rank)
	}
	if api.calls != 0 {
		t.Errorf("Store hit must not call the API, got %d calls", api.calls)
	}
}

// TestResolveRank_StoreMiss verifies an unknown player falls through to a
// league lookup
func TestResolveRank_StoreMiss(t *testing.T) {
	store := &fakeRankStore{ranks: map[string]string{}}
	api := &fakeLeagueAPI{entries: map[string][]riot.LeagueEntry{
		"puuid-2": {
			{QueueType: "RANKED_FLEX_SR", Tier: "EMERALD", Rank: "I"},
			{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "IV"},
		},
	}}
	cur := testCurator(store, api)

	rank, err := cur.ResolveRank(context.Background(), "puuid-2")
	if err != nil {
		t.Fatalf("ResolveRank failed: %v", err)
	}
	if rank != "GOLD_IV" {
		t.Errorf("Expected GOLD_IV, got %q", rank)
	}
	if api.calls != 1 {
		t.Errorf("Expected exactly one API call, got %d", api.calls)
	}
}

// TestRankFromEntries covers solo-queue extraction and the Unranked fallback
func TestRankFromEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []riot.LeagueEntry
		want    string
	}{
		{
			name: "solo queue entry",
			entries: []riot.LeagueEntry{
				{QueueType: "RANKED_SOLO_5x5", Tier: "DIAMOND", Rank: "II"},
			},
			want: "DIAMOND_II",
		},
		{
			name: "flex only",
			entries: []riot.LeagueEntry{
				{QueueType: "RANKED_FLEX_SR", Tier: "GOLD", Rank: "I"},
			},
			want: "Unranked",
		},
		{
			name:    "no entries",
			entries: nil,
			want:    "Unranked",
		},
		{
			name: "solo queue after other queues",
			entries: []riot.LeagueEntry{
				{QueueType: "RANKED_FLEX_SR", Tier: "GOLD", Rank: "I"},
				{QueueType: "RANKED_SOLO_5x5", Tier: "BRONZE", Rank: "III"},
			},
			want: "BRONZE_III",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RankFromEntries(tt.entries); got != tt.want {
				t.Errorf("RankFromEntries() = %q, want %q", got, tt.want)
			}
		})
	}
}
