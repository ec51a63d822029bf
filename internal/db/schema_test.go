package db

import (
	"strings"
	"testing"
)

// TestTableDDL verifies generated DDL quotes camelCase identifiers and keeps
// the id/created_at envelope
func TestTableDDL(t *testing.T) {
	ddl := tableDDL("game_team", []columnDef{
		{"gameId", "TEXT NOT NULL"},
		{"riftHerald", "BIGINT"},
	})

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS game_team",
		"id BIGSERIAL PRIMARY KEY",
		`"gameId" TEXT NOT NULL`,
		`"riftHerald" BIGINT`,
		"created_at TIMESTAMPTZ NOT NULL DEFAULT now()",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}
}

// TestColumnDefsUnique verifies no column is declared twice in either schema
func TestColumnDefsUnique(t *testing.T) {
	for _, tt := range []struct {
		name string
		cols []columnDef
	}{
		{"participants", participantColumns},
		{"teams", teamColumns},
	} {
		seen := make(map[string]bool, len(tt.cols))
		for _, c := range tt.cols {
			if seen[c.name] {
				t.Errorf("%s schema declares %q twice", tt.name, c.name)
			}
			seen[c.name] = true
		}
	}
}
