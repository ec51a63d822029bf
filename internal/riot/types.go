package riot

import "fmt"

// Account represents the response from /riot/account/v1/accounts/by-riot-id.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// LeagueEntry is one ranked queue standing from /lol/league/v4/entries/by-puuid.
type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`      // IRON .. CHALLENGER
	Rank         string `json:"rank"`      // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MatchPayload is the envelope of /lol/match/v5/matches/{matchId}. Info is
// kept as a raw map because curation projects it through a configured field
// allowlist rather than a fixed struct.
type MatchPayload struct {
	Metadata MatchMetadata  `json:"metadata"`
	Info     map[string]any `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

// APIError is the structured error body Riot returns on non-2xx responses,
// shaped as {"status":{"status_code":...,"message":...}}.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("riot api status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("riot api http status %d", e.HTTPStatus)
}

type apiErrorBody struct {
	Status struct {
		StatusCode int    `json:"status_code"`
		Message    string `json:"message"`
	} `json:"status"`
}
