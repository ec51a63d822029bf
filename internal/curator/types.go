package curator

// WinState is the outcome of one team-side of a match. The raw payload
// carries a literal boolean win flag; curation converts it to a tagged value
// so nothing downstream re-parses strings, and overrides it with Remake when
// the match ended in an early mutual surrender.
type WinState int

const (
	Loss WinState = iota
	Win
	Remake
)

// String returns the stored representation.
func (w WinState) String() string {
	switch w {
	case Win:
		return "Win"
	case Remake:
		return "Remake"
	default:
		return "Lose"
	}
}

// GameStatus flags whether a match participates in downstream win/loss and
// performance aggregates.
type GameStatus int

const (
	StatusNormal GameStatus = iota
	StatusAvoid
)

func (s GameStatus) String() string {
	if s == StatusAvoid {
		return "Avoid"
	}
	return "Normal"
}

// TrackedSummoner is the account the sync run belongs to. Its rank is already
// known, so curation never looks it up again.
type TrackedSummoner struct {
	PUUID string
	Rank  string
}

// ParticipantRecord is one flattened (match, player) row. Fields holds the
// allowlist-projected statistics from the raw payload, keyed by payload field
// name; everything else is derived during curation.
type ParticipantRecord struct {
	GameID           string
	PUUID            string
	GameEndTimestamp int64
	GameDuration     int64
	GameMode         string
	Status           GameStatus
	Rank             string
	Fields           map[string]any
}

// TeamRecord is one flattened (match, side) row. Fields holds the projected
// match-level metadata plus per-objective kill counts.
type TeamRecord struct {
	GameID string
	TeamID int
	Win    WinState
	Fields map[string]any
}
