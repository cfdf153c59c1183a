package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/stakewatch/internal/core/domain"
)

func TestRebuilder_RebuildLatest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "epochs", "validators.json")
	reader := NewReader(path, nil)
	rb := NewRebuilder(NewBuilder(newScoresDB(t), DefaultMinEpoch, nil), RebuilderConfig{Path: path}, reader, nil)

	if err := rb.RebuildLatest(t.Context()); err != nil {
		t.Fatalf("RebuildLatest() error = %v", err)
	}

	records, err := reader.Load(t.Context())
	if err != nil {
		t.Fatalf("Load() after rebuild error = %v", err)
	}
	if len(records) != 2 || records[0].VoteAddress != "v1" {
		t.Errorf("snapshot = %+v", records)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("snapshot dir has %d entries, want only the snapshot", len(entries))
	}
}

func TestRebuilder_ScoreCommand(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	path := filepath.Join(dir, "validators.json")

	rb := NewRebuilder(NewBuilder(newScoresDB(t), DefaultMinEpoch, nil), RebuilderConfig{
		Path:         path,
		ScoreCommand: "touch " + marker,
	}, nil, nil)
	if err := rb.RebuildLatest(t.Context()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("score command did not run: %v", err)
	}

	// A failing score command still rebuilds from the existing database.
	failing := NewRebuilder(NewBuilder(newScoresDB(t), DefaultMinEpoch, nil), RebuilderConfig{
		Path:         path,
		ScoreCommand: "exit 3",
	}, nil, nil)
	if err := failing.RebuildLatest(t.Context()); err != nil {
		t.Errorf("RebuildLatest() with failing score command error = %v", err)
	}
}

func TestRebuilder_RebuildHistory(t *testing.T) {
	dir := t.TempDir()
	adhoc := filepath.Join(dir, "validators_all.json")
	rb := NewRebuilder(NewBuilder(newScoresDB(t), DefaultMinEpoch, nil), RebuilderConfig{AdhocPath: adhoc}, nil, nil)

	if err := rb.RebuildHistory(t.Context(), 300); err != nil {
		t.Fatalf("RebuildHistory() error = %v", err)
	}

	data, err := os.ReadFile(adhoc)
	if err != nil {
		t.Fatal(err)
	}
	var history []domain.ValidatorHistory
	if err := json.Unmarshal(data, &history); err != nil {
		t.Fatalf("ad hoc output is not valid JSON: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2", len(history))
	}

	var raw []map[string]any
	json.Unmarshal(data, &raw)
	if _, ok := raw[0]["stats"]; !ok {
		t.Error("history entries must carry a stats array")
	}
}

func TestRebuilder_BuildFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validators.json")
	writeSnapshot(t, path, `[{"validator_vote_address":"keep"}]`)

	rb := NewRebuilder(NewBuilder(filepath.Join(dir, "missing.sqlite3"), DefaultMinEpoch, nil), RebuilderConfig{Path: path}, nil, nil)
	if err := rb.RebuildLatest(t.Context()); err == nil {
		t.Fatal("RebuildLatest() should fail without a database")
	}

	records, err := NewReader(path, nil).Load(t.Context())
	if err != nil || len(records) != 1 || records[0].VoteAddress != "keep" {
		t.Errorf("a failed rebuild must leave the old snapshot in place: %+v, %v", records, err)
	}
}
