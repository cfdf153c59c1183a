package command

import (
	"net/http"
	"strings"
	"testing"
)

// 2026-01-02T03:04:05Z
const sampleExpires = 1767323045000

func sampleToken() map[string]any {
	return map[string]any{"phone": "5550001111", "id": "abcdefghij0123456789", "expires": sampleExpires}
}

func TestTokenIssue(t *testing.T) {
	server := newMockServer(t)
	server.reply("/tokens", http.StatusOK, sampleToken())

	out, err := run(t, server, "token", "issue", "--phone", "5550001111", "--password", "hunter2")
	if err != nil {
		t.Fatalf("token issue: %v", err)
	}
	mustContain(t, out, "abcdefghij0123456789", "2026-01-02T03:04:05Z")

	got := server.last(t)
	if got.Method != "POST" || got.Body["phone"] != "5550001111" || got.Body["password"] != "hunter2" {
		t.Errorf("request = %+v", got)
	}
}

func TestTokenIssue_WrongPassword(t *testing.T) {
	server := newMockServer(t)
	server.handle("/tokens", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusBadRequest, "Password did not match the specified user's stored password")
	})

	_, err := run(t, server, "token", "issue", "--phone", "5550001111", "--password", "nope")
	if err == nil || !strings.Contains(err.Error(), "Password did not match") {
		t.Errorf("err = %v", err)
	}
}

func TestTokenGet(t *testing.T) {
	server := newMockServer(t)
	server.reply("/tokens", http.StatusOK, sampleToken())

	t.Run("table", func(t *testing.T) {
		out, err := run(t, server, "token", "get", "abcdefghij0123456789")
		if err != nil {
			t.Fatalf("token get: %v", err)
		}
		mustContain(t, out, "expires", "2026-01-02T03:04:05Z")
		if got := server.last(t); got.Query["id"] != "abcdefghij0123456789" {
			t.Errorf("query = %v", got.Query)
		}
	})

	t.Run("json keeps milliseconds", func(t *testing.T) {
		out, err := run(t, server, "-o", "json", "token", "get", "abcdefghij0123456789")
		if err != nil {
			t.Fatalf("token get: %v", err)
		}
		mustContain(t, out, `"expires": 1767323045000`)
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := run(t, server, "token", "get"); err == nil {
			t.Error("expected error without a token id")
		}
	})
}

func TestTokenExtend(t *testing.T) {
	server := newMockServer(t)
	server.reply("/tokens", http.StatusOK, map[string]any{})

	out, err := run(t, server, "token", "extend", "abcdefghij0123456789")
	if err != nil {
		t.Fatalf("token extend: %v", err)
	}
	mustContain(t, out, "Token abcdefghij0123456789 extended")

	got := server.last(t)
	if got.Method != "PUT" || got.Body["id"] != "abcdefghij0123456789" || got.Body["extend"] != true {
		t.Errorf("request = %+v", got)
	}
}

func TestTokenRevoke(t *testing.T) {
	server := newMockServer(t)
	server.reply("/tokens", http.StatusOK, map[string]any{})

	out, err := run(t, server, "-o", "json", "token", "revoke", "abcdefghij0123456789")
	if err != nil {
		t.Fatalf("token revoke: %v", err)
	}
	if out != "" {
		t.Errorf("json output should stay empty, got %q", out)
	}

	got := server.last(t)
	if got.Method != "DELETE" || got.Query["id"] != "abcdefghij0123456789" {
		t.Errorf("request = %+v", got)
	}
}
