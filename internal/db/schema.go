package db

import (
	"context"
	"fmt"
	"strings"
)

// Column names mirror the raw payload field names, so the allowlist-projected
// records pass straight through to inserts. Identifiers are quoted everywhere
// to preserve the camelCase.

var summonerDDL = `
CREATE TABLE IF NOT EXISTS summoner (
	id BIGSERIAL PRIMARY KEY,
	summoner_name TEXT NOT NULL,
	summoner_tag TEXT,
	puuid TEXT NOT NULL UNIQUE,
	current_rank TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type columnDef struct {
	name    string
	sqlType string
}

var participantColumns = []columnDef{
	{"gameId", "TEXT NOT NULL"},
	{"gameEndTimestamp", "BIGINT"},
	{"gameDuration", "BIGINT"},
	{"gameMode", "TEXT"},
	{"gameStatusProcess", "TEXT"},
	{"puuid", "TEXT NOT NULL"},
	{"current_rank", "TEXT"},
	{"championName", "TEXT"},
	{"champExperience", "BIGINT"},
	{"champLevel", "BIGINT"},
	{"individualPosition", "TEXT"},
	{"teamId", "BIGINT"},
	{"deaths", "BIGINT"},
	{"kills", "BIGINT"},
	{"assists", "BIGINT"},
	{"allInPings", "BIGINT"},
	{"assistMePings", "BIGINT"},
	{"basicPings", "BIGINT"},
	{"commandPings", "BIGINT"},
	{"dangerPings", "BIGINT"},
	{"enemyMissingPings", "BIGINT"},
	{"enemyVisionPings", "BIGINT"},
	{"getBackPings", "BIGINT"},
	{"holdPings", "BIGINT"},
	{"needVisionPings", "BIGINT"},
	{"onMyWayPings", "BIGINT"},
	{"pushPings", "BIGINT"},
	{"retreatPings", "BIGINT"},
	{"visionClearedPings", "BIGINT"},
	{"doubleKills", "BIGINT"},
	{"tripleKills", "BIGINT"},
	{"quadraKills", "BIGINT"},
	{"pentaKills", "BIGINT"},
	{"killingSprees", "BIGINT"},
	{"largestKillingSpree", "BIGINT"},
	{"largestMultiKill", "BIGINT"},
	{"firstBloodAssist", "BOOLEAN"},
	{"firstBloodKill", "BOOLEAN"},
	{"magicDamageDealt", "BIGINT"},
	{"magicDamageDealtToChampions", "BIGINT"},
	{"magicDamageTaken", "BIGINT"},
	{"physicalDamageDealt", "BIGINT"},
	{"physicalDamageDealtToChampions", "BIGINT"},
	{"physicalDamageTaken", "BIGINT"},
	{"damageSelfMitigated", "BIGINT"},
	{"trueDamageDealt", "BIGINT"},
	{"trueDamageDealtToChampions", "BIGINT"},
	{"trueDamageTaken", "BIGINT"},
	{"damageDealtToObjectives", "BIGINT"},
	{"baronKills", "BIGINT"},
	{"dragonKills", "BIGINT"},
	{"objectivesStolen", "BIGINT"},
	{"objectivesStolenAssists", "BIGINT"},
	{"detectorWardsPlaced", "BIGINT"},
	{"wardsPlaced", "BIGINT"},
	{"wardsKilled", "BIGINT"},
	{"visionScore", "BIGINT"},
	{"spell1Casts", "BIGINT"},
	{"spell2Casts", "BIGINT"},
	{"spell3Casts", "BIGINT"},
	{"spell4Casts", "BIGINT"},
	{"summoner1Casts", "BIGINT"},
	{"summoner1Id", "BIGINT"},
	{"summoner2Casts", "BIGINT"},
	{"summoner2Id", "BIGINT"},
	{"totalTimeSpentDead", "BIGINT"},
	{"longestTimeSpentLiving", "BIGINT"},
	{"goldEarned", "BIGINT"},
	{"totalMinionsKilled", "BIGINT"},
	{"totalAllyJungleMinionsKilled", "BIGINT"},
	{"totalEnemyJungleMinionsKilled", "BIGINT"},
	{"timeCCingOthers", "BIGINT"},
	{"totalTimeCCDealt", "BIGINT"},
	{"item0", "BIGINT"},
	{"item1", "BIGINT"},
	{"item2", "BIGINT"},
	{"item3", "BIGINT"},
	{"item4", "BIGINT"},
	{"item5", "BIGINT"},
}

var teamColumns = []columnDef{
	{"gameId", "TEXT NOT NULL"},
	{"gameMode", "TEXT"},
	{"gameType", "TEXT"},
	{"gameVersion", "TEXT"},
	{"endOfGameResult", "TEXT"},
	{"atakhan", "BIGINT"},
	{"baron", "BIGINT"},
	{"champion", "BIGINT"},
	{"dragon", "BIGINT"},
	{"horde", "BIGINT"},
	{"inhibitor", "BIGINT"},
	{"riftHerald", "BIGINT"},
	{"tower", "BIGINT"},
	{"teamId", "BIGINT"},
	{"win", "TEXT"},
}

var participantColumnSet = columnSet(participantColumns)
var teamColumnSet = columnSet(teamColumns)

func columnSet(cols []columnDef) map[string]struct{} {
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c.name] = struct{}{}
	}
	return set
}

func tableDDL(table string, cols []columnDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\tid BIGSERIAL PRIMARY KEY", table)
	for _, c := range cols {
		fmt.Fprintf(&b, ",\n\t%q %s", c.name, c.sqlType)
	}
	b.WriteString(",\n\tcreated_at TIMESTAMPTZ NOT NULL DEFAULT now()\n)")
	return b.String()
}

// EnsureTables creates the three tables and their lookup indexes if they do
// not already exist. Called once at startup; safe to repeat.
func (s *Store) EnsureTables(ctx context.Context) error {
	stmts := []string{
		summonerDDL,
		tableDDL("game_participants", participantColumns),
		tableDDL("game_team", teamColumns),
		`CREATE INDEX IF NOT EXISTS idx_participants_game ON game_participants ("gameId")`,
		`CREATE INDEX IF NOT EXISTS idx_participants_puuid ON game_participants ("puuid")`,
		`CREATE INDEX IF NOT EXISTS idx_team_game ON game_team ("gameId")`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

// DropTables removes all pipeline tables. Used by the dashboard's full reset.
func (s *Store) DropTables(ctx context.Context) error {
	for _, table := range []string{"game_participants", "game_team", "summoner"} {
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
