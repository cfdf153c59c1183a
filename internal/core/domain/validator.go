package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// EpochStat is one validator's performance record for a single epoch.
// Nullable columns of the scores database are pointers.
type EpochStat struct {
	Epoch                   int64    `json:"epoch"`
	Score                   *float64 `json:"score"`
	CreditsObserved         *float64 `json:"credits_observed"`
	Rank                    *int64   `json:"rank"`
	VoteAddress             string   `json:"vote_address"`
	Commission              *float64 `json:"commission"`
	AvgPosition             *float64 `json:"avg_position"`
	DataCenterConcentration *float64 `json:"data_center_concentration"`
	AvgActiveStake          *float64 `json:"avg_active_stake"`
	APY                     *float64 `json:"apy"`
	Delinquent              *Flag    `json:"delinquent"`
	ThisEpochCredits        *float64 `json:"this_epoch_credits"`
	Pct                     *float64 `json:"pct"`
	MarinadeStaked          *float64 `json:"marinade_staked"`
	ShouldHave              *float64 `json:"should_have"`
	RemoveLevel             *float64 `json:"remove_level"`
	RemoveLevelReason       *string  `json:"remove_level_reason"`
}

// ValidatorRecord is a snapshot entry. EpochStats is ascending by epoch at
// rest and holds at most one entry per epoch.
type ValidatorRecord struct {
	VoteAddress              string      `json:"validator_vote_address"`
	KeybaseID                *string     `json:"keybase_id"`
	Description              *string     `json:"validator_description"`
	MostRecentAPY            *float64    `json:"most_recent_apy"`
	MostRecentMarinadeStaked *float64    `json:"most_recent_marinade_staked"`
	MostRecentRank           *int64      `json:"most_recent_rank"`
	EpochStats               []EpochStat `json:"epoch_stats"`
}

// ValidatorHistory is an entry of the ad hoc full-history output.
type ValidatorHistory struct {
	VoteAddress string      `json:"validator_vote_address"`
	KeybaseID   *string     `json:"keybase_id"`
	Description *string     `json:"validator_description"`
	Stats       []EpochStat `json:"stats"`
}

// Normalize sorts EpochStats ascending by epoch and drops repeated epochs,
// keeping the first entry seen for each.
func (r *ValidatorRecord) Normalize() {
	r.EpochStats = normalizeStats(r.EpochStats)
}

// Descending returns a copy of the record whose EpochStats are ordered by
// descending epoch. The receiver is not modified.
func (r *ValidatorRecord) Descending() ValidatorRecord {
	out := *r
	out.EpochStats = make([]EpochStat, len(r.EpochStats))
	for i, s := range r.EpochStats {
		out.EpochStats[len(r.EpochStats)-1-i] = s
	}
	return out
}

func normalizeStats(stats []EpochStat) []EpochStat {
	if len(stats) == 0 {
		return []EpochStat{}
	}
	seen := make(map[int64]bool, len(stats))
	out := make([]EpochStat, 0, len(stats))
	for _, s := range stats {
		if seen[s.Epoch] {
			continue
		}
		seen[s.Epoch] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Epoch < out[j].Epoch })
	return out
}

// Flag is a boolean column that the scores database may store as 0/1.
type Flag bool

// UnmarshalJSON accepts true/false and numbers (non-zero is true).
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: %s is neither a boolean nor a number", data)
	}
	*f = n != 0
	return nil
}

// FlagPtr converts a nullable integer column to a *Flag.
func FlagPtr(v *int64) *Flag {
	if v == nil {
		return nil
	}
	f := Flag(*v != 0)
	return &f
}

// DefaultPageLimit is the page size used when none (or an invalid one) is given.
const DefaultPageLimit = 10

// Page is a window over the snapshot entries.
type Page struct {
	Start      int // inclusive, clamped to total
	End        int // exclusive, clamped to total
	TotalPages int
}

// Paginate computes the window for the 1-based page over total entries.
// Pages past the last one yield an empty window. Nothing is multiplied
// before the page is known to be in range, so huge query values cannot
// overflow.
func Paginate(total, page, limit int) Page {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if total < 0 {
		total = 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		return Page{Start: total, End: total, TotalPages: pages}
	}

	start := (page - 1) * limit
	end := total
	if total-start > limit {
		end = start + limit
	}
	return Page{Start: start, End: end, TotalPages: pages}
}
