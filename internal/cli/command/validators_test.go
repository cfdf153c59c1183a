package command

import (
	"net/http"
	"strings"
	"testing"
)

func samplePage() map[string]any {
	return map[string]any{
		"totalPages": 3,
		"validators": []map[string]any{
			{
				"validator_vote_address":      "v1",
				"keybase_id":                  "alpha",
				"validator_description":       "Alpha",
				"most_recent_apy":             6.7,
				"most_recent_marinade_staked": 120,
				"most_recent_rank":            1,
				"epoch_stats": []map[string]any{
					{"epoch": 301, "vote_address": "v1"},
					{"epoch": 300, "vote_address": "v1"},
				},
			},
			{
				"validator_vote_address": "v2",
				"most_recent_rank":       2,
				"epoch_stats":            []map[string]any{},
			},
		},
	}
}

func TestValidatorsList(t *testing.T) {
	server := newMockServer(t)
	server.reply("/validators", http.StatusOK, samplePage())

	t.Run("table", func(t *testing.T) {
		out, err := run(t, server, "validators", "list", "--page", "2", "--limit", "5")
		if err != nil {
			t.Fatalf("validators list: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 5 {
			t.Fatalf("got %d lines:\n%s", len(lines), out)
		}
		if got := strings.Fields(lines[0]); strings.Join(got, " ") != "VOTE_ADDRESS RANK APY STAKED EPOCHS LATEST_EPOCH" {
			t.Errorf("headers = %v", got)
		}
		if got := strings.Fields(lines[1]); strings.Join(got, " ") != "v1 1 6.7 120 2 301" {
			t.Errorf("row v1 = %v", got)
		}
		if got := strings.Fields(lines[2]); strings.Join(got, " ") != "v2 2 - - 0 0" {
			t.Errorf("row v2 = %v", got)
		}
		if lines[4] != "Page 2 of 3" {
			t.Errorf("footer = %q", lines[4])
		}

		got := server.last(t)
		if got.Query["page"] != "2" || got.Query["limit"] != "5" {
			t.Errorf("query = %v", got.Query)
		}
	})

	t.Run("wide", func(t *testing.T) {
		out, err := run(t, server, "--wide", "validators", "list")
		if err != nil {
			t.Fatalf("validators list: %v", err)
		}
		mustContain(t, out, "KEYBASE", "DESCRIPTION", "alpha", "Alpha")
		got := server.last(t)
		if got.Query["page"] != "1" || got.Query["limit"] != "10" {
			t.Errorf("default query = %v", got.Query)
		}
	})

	t.Run("yaml carries the full page", func(t *testing.T) {
		out, err := run(t, server, "-o", "yaml", "validators", "list")
		if err != nil {
			t.Fatalf("validators list: %v", err)
		}
		mustContain(t, out, "totalPages: 3", "validator_vote_address: v1", "epoch_stats:", "epoch: 301")
		if strings.Contains(out, "Page ") {
			t.Error("footer printed in yaml output")
		}
	})
}

func TestValidatorsList_InvalidQuery(t *testing.T) {
	server := newMockServer(t)
	server.handle("/validators", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusNotFound, "Invalid Query")
	})

	_, err := run(t, server, "validators", "list", "--page", "0")
	if err == nil || !strings.Contains(err.Error(), "Invalid Query") {
		t.Errorf("err = %v", err)
	}
}

func TestValidatorsList_NoSnapshot(t *testing.T) {
	server := newMockServer(t)

	_, err := run(t, server, "validators", "list")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("err = %v, want a bare 404", err)
	}
}

func TestValidatorsCount(t *testing.T) {
	server := newMockServer(t)
	server.reply("/validators/count", http.StatusOK, map[string]int{"count": 42})

	out, err := run(t, server, "validators", "count")
	if err != nil {
		t.Fatalf("validators count: %v", err)
	}
	mustContain(t, out, "count", "42")
	if got := server.last(t); got.Method != "GET" || got.Path != "/validators/count" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
}

func TestValidatorsRebuild(t *testing.T) {
	server := newMockServer(t)
	server.reply("/validators", http.StatusOK, map[string]any{})

	out, err := run(t, server, "validators", "rebuild", "--epoch", "410")
	if err != nil {
		t.Fatalf("validators rebuild: %v", err)
	}
	mustContain(t, out, "History rebuild started")
	got := server.last(t)
	if got.Method != "POST" || got.Body["epochNum"] != "410" {
		t.Errorf("request = %+v", got)
	}

	if _, err := run(t, server, "validators", "rebuild"); err != nil {
		t.Fatalf("validators rebuild: %v", err)
	}
	if _, ok := server.last(t).Body["epochNum"]; ok {
		t.Error("epochNum sent without --epoch")
	}
}
