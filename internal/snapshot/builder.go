package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yndnr/stakewatch/internal/core/domain"
)

// DefaultMinEpoch separates the epochs read from scores2 from the older
// ones read from scores.
const DefaultMinEpoch = 260

// latestQuery returns one row per (validator, epoch): epochs above the
// split come from scores2, older epochs from scores, the latter only for
// validators staked in the most recent scores2 epoch.
const latestQuery = `
SELECT s2.epoch AS epoch, s2.name AS name, s2.keybase_id AS keybase_id,
       s2.vote_address AS vote_address, s2.rank AS rank, s.pct AS pct,
       s2.score AS score, s2.commission AS commission,
       s2.avg_active_stake AS avg_active_stake, NULL AS avg_position,
       s2.apy AS apy, s2.delinquent AS delinquent,
       s2.marinade_staked AS marinade_staked, s2.should_have AS should_have,
       s2.data_center_concentration AS data_center_concentration
FROM scores2 s2
LEFT JOIN scores s ON s.vote_address = s2.vote_address AND s.epoch = s2.epoch
WHERE s2.marinade_staked > 0 AND s2.epoch > ?
UNION ALL
SELECT s.epoch, s.name, s2.keybase_id,
       s2.vote_address, NULL, s.pct,
       s.score, s.commission,
       NULL, s.avg_position,
       NULL, NULL,
       NULL, NULL,
       s.data_center_concentration
FROM scores2 s2
INNER JOIN scores s ON s.vote_address = s2.vote_address
WHERE s2.marinade_staked > 0
  AND s2.epoch = (SELECT MAX(epoch) FROM scores2)
  AND s.epoch <= ?
ORDER BY epoch DESC, rank ASC`

// historyQuery returns every staked scores2 row above a floor epoch.
const historyQuery = `
SELECT * FROM scores2
WHERE epoch > ? AND marinade_staked > 0
ORDER BY epoch ASC, rank ASC`

// Builder reads the scores database and folds its rows into snapshot
// records.
type Builder struct {
	dbPath   string
	minEpoch int64
	logger   *slog.Logger
}

// NewBuilder creates a Builder over the sqlite database at dbPath.
func NewBuilder(dbPath string, minEpoch int64, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{dbPath: dbPath, minEpoch: minEpoch, logger: logger}
}

func (b *Builder) open() (*sql.DB, error) {
	if _, err := os.Stat(b.dbPath); err != nil {
		return nil, fmt.Errorf("scores database: %w", err)
	}
	db, err := sql.Open("sqlite", b.dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA query_only=ON;`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// BuildLatest returns a record for every validator staked in the most
// recent epoch, carrying its whole history. The most_recent_* fields come
// from that epoch's row. Records are ordered by rank in the most recent
// epoch; their epoch stats are ascending.
func (b *Builder) BuildLatest(ctx context.Context) ([]domain.ValidatorRecord, error) {
	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, latestQuery, b.minEpoch, b.minEpoch)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var (
		records    = []domain.ValidatorRecord{}
		index      = make(map[string]int)
		mostRecent int64
		first      = true
		rowCount   int
	)
	err = scanRows(rows, func(r row) {
		rowCount++
		stat := r.stat()
		if first {
			mostRecent = stat.Epoch
			first = false
		}

		i, seen := index[stat.VoteAddress]
		switch {
		case seen:
			records[i].EpochStats = append(records[i].EpochStats, stat)
		case stat.Epoch == mostRecent:
			index[stat.VoteAddress] = len(records)
			records = append(records, domain.ValidatorRecord{
				VoteAddress:              stat.VoteAddress,
				KeybaseID:                r.str("keybase_id"),
				Description:              r.str("name"),
				MostRecentAPY:            stat.APY,
				MostRecentMarinadeStaked: stat.MarinadeStaked,
				MostRecentRank:           stat.Rank,
				EpochStats:               []domain.EpochStat{stat},
			})
		}
	})
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Normalize()
	}
	b.logger.Info("built latest snapshot",
		"rows", rowCount,
		"validators", len(records),
		"epoch", mostRecent,
	)
	return records, nil
}

// BuildHistory returns the full staked history of every validator seen
// in scores2 above floor, in first-seen order.
func (b *Builder) BuildHistory(ctx context.Context, floor int64) ([]domain.ValidatorHistory, error) {
	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, historyQuery, floor)
	if err != nil {
		return nil, fmt.Errorf("query scores2: %w", err)
	}
	defer rows.Close()

	out := []domain.ValidatorHistory{}
	index := make(map[string]int)
	err = scanRows(rows, func(r row) {
		stat := r.stat()
		// The history output carries no pct.
		stat.Pct = nil

		if i, ok := index[stat.VoteAddress]; ok {
			out[i].Stats = append(out[i].Stats, stat)
			return
		}
		index[stat.VoteAddress] = len(out)
		out = append(out, domain.ValidatorHistory{
			VoteAddress: stat.VoteAddress,
			KeybaseID:   r.str("keybase_id"),
			Description: r.str("name"),
			Stats:       []domain.EpochStat{stat},
		})
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("built history snapshot", "floor", floor, "validators", len(out))
	return out, nil
}

// row is one result row keyed by lower-cased column name. Columns absent
// from the result read as NULL.
type row map[string]any

func scanRows(rows *sql.Rows, fn func(row)) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	for i := range cols {
		cols[i] = strings.ToLower(cols[i])
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for rows.Next() {
		for i := range vals {
			vals[i] = nil
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan scores row: %w", err)
		}
		r := make(row, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		fn(r)
	}
	return rows.Err()
}

func (r row) stat() domain.EpochStat {
	epoch, _ := r.int("epoch")
	vote := ""
	if v := r.str("vote_address"); v != nil {
		vote = *v
	}
	var rank *int64
	if n, ok := r.int("rank"); ok {
		rank = &n
	}
	var delinquent *int64
	if n, ok := r.int("delinquent"); ok {
		delinquent = &n
	}

	return domain.EpochStat{
		Epoch:                   epoch,
		Score:                   r.float("score"),
		CreditsObserved:         r.float("credits_observed"),
		Rank:                    rank,
		VoteAddress:             vote,
		Commission:              r.float("commission"),
		AvgPosition:             r.float("avg_position"),
		DataCenterConcentration: r.float("data_center_concentration"),
		AvgActiveStake:          r.float("avg_active_stake"),
		APY:                     r.float("apy"),
		Delinquent:              domain.FlagPtr(delinquent),
		ThisEpochCredits:        r.float("this_epoch_credits"),
		Pct:                     r.float("pct"),
		MarinadeStaked:          r.float("marinade_staked"),
		ShouldHave:              r.float("should_have"),
		RemoveLevel:             r.float("remove_level"),
		RemoveLevelReason:       r.str("remove_level_reason"),
	}
}

func (r row) float(col string) *float64 {
	var f float64
	switch v := r[col].(type) {
	case int64:
		f = float64(v)
	case float64:
		f = v
	case bool:
		if v {
			f = 1
		}
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = n
	case []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	return &f
}

func (r row) int(col string) (int64, bool) {
	switch v := r[col].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func (r row) str(col string) *string {
	var s string
	switch v := r[col].(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}
	return &s
}
