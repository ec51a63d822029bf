package curator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Benji12358/LOL-dashboard/internal/config"
	"github.com/Benji12358/LOL-dashboard/internal/riot"
)

// RankStore is the slice of the persisted store curation reads from.
type RankStore interface {
	KnownRank(ctx context.Context, puuid string) (string, bool, error)
}

// LeagueAPI is the single external call curation may issue, a fresh
// ranked-queue lookup for a player the store has never seen.
type LeagueAPI interface {
	LeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntry, error)
}

// Curator transforms one raw match payload into flattened participant and
// team records. It holds no persistent state of its own.
type Curator struct {
	store        RankStore
	api          LeagueAPI
	fields       config.FieldConfig
	regionPrefix string
	logger       *slog.Logger
}

func New(store RankStore, api LeagueAPI, cfg config.Config, logger *slog.Logger) *Curator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Curator{
		store:        store,
		api:          api,
		fields:       cfg.Fields,
		regionPrefix: cfg.Riot.RegionPrefix,
		logger:       logger,
	}
}

// GameModeFromQueue maps the payload's numeric queue id to the stored
// gameMode tag.
func GameModeFromQueue(queueID int64) string {
	switch queueID {
	case 400:
		return "normal"
	case 420:
		return "solo"
	case 440:
		return "flex"
	case 450:
		return "ARAM"
	case 480:
		return "swiftplay"
	default:
		return "other"
	}
}

// CurateMatch normalizes one raw match into exactly 10 participant rows and
// 2 team rows. A malformed payload fails this match only; the error never
// aborts the surrounding sync run.
func (c *Curator) CurateMatch(ctx context.Context, matchID string, payload *riot.MatchPayload, tracked TrackedSummoner) ([]ParticipantRecord, []TeamRecord, error) {
	info := payload.Info
	if info == nil {
		return nil, nil, fmt.Errorf("curate %s: payload has no info object", matchID)
	}

	rawParticipants, err := objectSlice(info, "participants")
	if err != nil {
		return nil, nil, fmt.Errorf("curate %s: %w", matchID, err)
	}
	if len(rawParticipants) != 10 {
		return nil, nil, fmt.Errorf("curate %s: expected 10 participants, got %d", matchID, len(rawParticipants))
	}

	rawTeams, err := objectSlice(info, "teams")
	if err != nil {
		return nil, nil, fmt.Errorf("curate %s: %w", matchID, err)
	}
	if len(rawTeams) != 2 {
		return nil, nil, fmt.Errorf("curate %s: expected 2 teams, got %d", matchID, len(rawTeams))
	}

	endTimestamp, err := requireInt(info, "gameEndTimestamp")
	if err != nil {
		return nil, nil, fmt.Errorf("curate %s: %w", matchID, err)
	}
	duration, err := requireInt(info, "gameDuration")
	if err != nil {
		return nil, nil, fmt.Errorf("curate %s: %w", matchID, err)
	}
	queueID, err := requireInt(info, "queueId")
	if err != nil {
		return nil, nil, fmt.Errorf("curate %s: %w", matchID, err)
	}

	mode := GameModeFromQueue(queueID)

	// Early-surrender remakes are flagged on every participant; the first one
	// stands for the match. Absent flag means no remake.
	remake := optionalBool(rawParticipants[0], "gameEndedInEarlySurrender")

	status := StatusNormal
	if remake || mode == "ARAM" {
		status = StatusAvoid
	}

	participants := make([]ParticipantRecord, 0, len(rawParticipants))
	for i, raw := range rawParticipants {
		puuid, ok := raw["puuid"].(string)
		if !ok || puuid == "" {
			return nil, nil, fmt.Errorf("curate %s: participant %d has no puuid", matchID, i)
		}

		var rank string
		if puuid == tracked.PUUID {
			rank = tracked.Rank
		} else {
			rank, err = c.ResolveRank(ctx, puuid)
			if err != nil {
				return nil, nil, fmt.Errorf("curate %s: resolve rank for participant %d: %w", matchID, i, err)
			}
		}

		participants = append(participants, ParticipantRecord{
			GameID:           matchID,
			PUUID:            puuid,
			GameEndTimestamp: endTimestamp,
			GameDuration:     duration,
			GameMode:         mode,
			Status:           status,
			Rank:             rank,
			Fields:           project(raw, c.fields.Participant),
		})
	}

	teams := make([]TeamRecord, 0, len(rawTeams))
	for i, rawTeam := range rawTeams {
		team, err := c.curateTeam(matchID, info, rawTeam, remake)
		if err != nil {
			return nil, nil, fmt.Errorf("curate %s: team %d: %w", matchID, i, err)
		}
		teams = append(teams, team)
	}

	return participants, teams, nil
}

// curateTeam flattens one side of the match: projected match-level metadata,
// named objective kill counts, team id and a typed win state. The remake
// override wins over the payload's literal flag for both sides.
func (c *Curator) curateTeam(matchID string, info, rawTeam map[string]any, remake bool) (TeamRecord, error) {
	fields := project(info, c.fields.Team)

	// The payload carries a bare numeric gameId; the stored identifier is the
	// region-prefixed match id. Drop the projected copy after checking they
	// agree.
	if raw, ok := fields["gameId"]; ok {
		if id, ok := raw.(int64); ok {
			if expected := c.regionPrefix + strconv.FormatInt(id, 10); expected != matchID {
				c.logger.Warn("payload gameId does not match match id", "match_id", matchID, "payload_game_id", id)
			}
		}
		delete(fields, "gameId")
	}

	objectives, ok := rawTeam["objectives"].(map[string]any)
	if !ok {
		return TeamRecord{}, fmt.Errorf("team has no objectives object")
	}
	for _, name := range c.fields.Objectives {
		obj, ok := objectives[name].(map[string]any)
		if !ok {
			// Neutral objective slots vary by game version.
			continue
		}
		kills, err := requireInt(obj, "kills")
		if err != nil {
			return TeamRecord{}, fmt.Errorf("objective %s: %w", name, err)
		}
		fields[name] = kills
	}

	teamID, err := requireInt(rawTeam, "teamId")
	if err != nil {
		return TeamRecord{}, err
	}

	winFlag, ok := rawTeam["win"].(bool)
	if !ok {
		return TeamRecord{}, fmt.Errorf("team has no win flag")
	}
	win := Loss
	if winFlag {
		win = Win
	}
	if remake {
		win = Remake
	}

	return TeamRecord{
		GameID: matchID,
		TeamID: int(teamID),
		Win:    win,
		Fields: fields,
	}, nil
}

// project copies the allowlisted fields out of a raw payload object. Fields
// not on the list are dropped; listed fields missing from the payload are
// omitted rather than erroring.
func project(raw map[string]any, allowlist []string) map[string]any {
	out := make(map[string]any, len(allowlist))
	for _, name := range allowlist {
		if v, ok := raw[name]; ok {
			out[name] = normalizeValue(v)
		}
	}
	return out
}

// normalizeValue collapses JSON numbers to int64 where they are integral,
// which is every statistic this pipeline stores.
func normalizeValue(v any) any {
	if f, ok := v.(float64); ok {
		if i := int64(f); float64(i) == f {
			return i
		}
	}
	return v
}

func objectSlice(m map[string]any, key string) ([]map[string]any, error) {
	raw, ok := m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("missing or malformed %s array", key)
	}
	out := make([]map[string]any, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not an object", key, i)
		}
		out = append(out, obj)
	}
	return out, nil
}

func requireInt(m map[string]any, key string) (int64, error) {
	switch v := m[key].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case nil:
		return 0, fmt.Errorf("missing required field %s", key)
	default:
		return 0, fmt.Errorf("field %s has unexpected type %T", key, v)
	}
}

func optionalBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
