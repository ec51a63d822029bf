package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Benji12358/LOL-dashboard/internal/curator"
)

// ErrMultipleSummoners is returned when the single-account invariant is
// violated. The store never picks one silently.
var ErrMultipleSummoners = errors.New("more than one summoner stored")

// Summoner is the tracked account's identity row.
type Summoner struct {
	Name      string
	Tag       string
	PUUID     string
	Rank      string
	CreatedAt time.Time
}

// FetchSummoner returns the tracked summoner, or nil when none has been
// stored yet.
func (s *Store) FetchSummoner(ctx context.Context) (*Summoner, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT summoner_name, summoner_tag, puuid, current_rank, created_at
		FROM summoner
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch summoner: %w", err)
	}
	defer rows.Close()

	var out []Summoner
	for rows.Next() {
		var sm Summoner
		if err := rows.Scan(&sm.Name, &sm.Tag, &sm.PUUID, &sm.Rank, &sm.CreatedAt); err != nil {
			return nil, fmt.Errorf("fetch summoner: %w", err)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch summoner: %w", err)
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return &out[0], nil
	default:
		return nil, ErrMultipleSummoners
	}
}

// InsertSummoner stores the tracked account. At most one row is expected per
// store instance.
func (s *Store) InsertSummoner(ctx context.Context, sm Summoner) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO summoner (summoner_name, summoner_tag, puuid, current_rank)
		VALUES ($1, $2, $3, $4)
	`, sm.Name, sm.Tag, sm.PUUID, sm.Rank)
	if err != nil {
		return fmt.Errorf("insert summoner: %w", err)
	}
	return nil
}

// UpdateSummonerRank refreshes the stored rank in place.
func (s *Store) UpdateSummonerRank(ctx context.Context, puuid, rank string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE summoner SET current_rank = $2 WHERE puuid = $1
	`, puuid, rank)
	if err != nil {
		return fmt.Errorf("update summoner rank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update summoner rank: no summoner with puuid %s", puuid)
	}
	return nil
}

// StoredGameIDs returns every match identifier already recorded as a
// participant row for the given player. This is the dedup set behind the
// incremental sync filter.
func (s *Store) StoredGameIDs(ctx context.Context, puuid string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT "gameId" FROM game_participants WHERE "puuid" = $1
	`, puuid)
	if err != nil {
		return nil, fmt.Errorf("stored game ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("stored game ids: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stored game ids: %w", err)
	}
	return ids, nil
}

// KnownRank returns the rank recorded for a player by any earlier curation,
// and whether one exists.
func (s *Store) KnownRank(ctx context.Context, puuid string) (string, bool, error) {
	var rank string
	err := s.pool.QueryRow(ctx, `
		SELECT current_rank FROM game_participants WHERE "puuid" = $1 LIMIT 1
	`, puuid).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("known rank: %w", err)
	}
	return rank, true, nil
}

// InsertMatch persists one curated match: all participant rows and both team
// rows in a single transaction, so a crash mid-match can never leave a
// partially-ingested match behind.
func (s *Store) InsertMatch(ctx context.Context, participants []curator.ParticipantRecord, teams []curator.TeamRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert match: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range participants {
		row := map[string]any{
			"gameId":            p.GameID,
			"gameEndTimestamp":  p.GameEndTimestamp,
			"gameDuration":      p.GameDuration,
			"gameMode":          p.GameMode,
			"gameStatusProcess": p.Status.String(),
			"current_rank":      p.Rank,
			"puuid":             p.PUUID,
		}
		for k, v := range p.Fields {
			row[k] = v
		}
		sql, args := buildInsert("game_participants", participantColumnSet, row)
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert match %s: participant %s: %w", p.GameID, p.PUUID, err)
		}
	}

	for _, t := range teams {
		row := map[string]any{
			"gameId": t.GameID,
			"teamId": t.TeamID,
			"win":    t.Win.String(),
		}
		for k, v := range t.Fields {
			row[k] = v
		}
		sql, args := buildInsert("game_team", teamColumnSet, row)
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert match %s: team %d: %w", t.GameID, t.TeamID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert match: commit: %w", err)
	}
	return nil
}

// buildInsert assembles a single-row INSERT from the row keys that are actual
// table columns. Keys outside the schema are skipped, matching the allowlist
// contract: requested-but-unknown fields never error.
func buildInsert(table string, valid map[string]struct{}, row map[string]any) (string, []any) {
	cols := make([]string, 0, len(row))
	for k := range row {
		if _, ok := valid[k]; ok {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return sql, args
}
