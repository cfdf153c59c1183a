package snapshot

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/yndnr/stakewatch/internal/core/domain"
)

// newScoresDB creates a scores database with a small fixed history:
//
//	scores2: v1 at 300 (rank 2) and 301 (rank 1), v2 at 301 (rank 2),
//	         v3 at 300 only, v4 at 301 without stake
//	scores:  v1 at 250, 260 and 300; v2 at 259
func newScoresDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scores.sqlite3")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE scores2 (
			epoch INTEGER, keybase_id TEXT, name TEXT, vote_address TEXT,
			score REAL, rank INTEGER, commission REAL, avg_active_stake REAL,
			apy REAL, delinquent INTEGER, this_epoch_credits INTEGER,
			marinade_staked REAL, should_have REAL, data_center_concentration REAL,
			remove_level INTEGER, remove_level_reason TEXT
		);`,
		`CREATE TABLE scores (
			epoch INTEGER, name TEXT, vote_address TEXT, score REAL,
			commission REAL, avg_position REAL, data_center_concentration REAL,
			pct REAL
		);`,
		`INSERT INTO scores2 VALUES
			(300, 'alpha', 'Alpha', 'v1', 0.9, 2, 5, 1000, 6.5, 0, 4000, 100, 110, 0.1, 0, NULL),
			(301, 'alpha', 'Alpha', 'v1', 0.95, 1, 5, 1100, 6.7, 0, 4100, 120, 130, 0.1, 0, NULL),
			(301, 'beta',  'Beta',  'v2', 0.8, 2, 7, 900, 6.1, 1, 3900, 80, 70, 0.2, 1, 'late'),
			(300, 'gamma', 'Gamma', 'v3', 0.7, 1, 3, 800, 6.0, 0, 3800, 50, 50, 0.3, 0, NULL),
			(301, 'delta', 'Delta', 'v4', 0.6, 3, 9, 700, 5.0, 0, 3700, 0, 0, 0.4, 0, NULL);`,
		`INSERT INTO scores VALUES
			(250, 'Alpha', 'v1', 0.5, 5, 12.5, 0.1, 0.25),
			(260, 'Alpha', 'v1', 0.6, 5, 11.0, 0.1, 0.3),
			(300, 'Alpha', 'v1', 0.9, 5, 10.0, 0.1, 0.5),
			(259, 'Beta',  'v2', 0.4, 7, 20.0, 0.2, 0.1);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	return path
}

func epochs(stats []domain.EpochStat) []int64 {
	out := make([]int64, len(stats))
	for i, s := range stats {
		out[i] = s.Epoch
	}
	return out
}
