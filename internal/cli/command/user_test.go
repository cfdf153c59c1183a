package command

import (
	"net/http"
	"strings"
	"testing"
)

func TestUserCreate(t *testing.T) {
	server := newMockServer(t)
	server.reply("/users", http.StatusOK, map[string]any{})

	out, err := run(t, server, "user", "create",
		"--phone", "5550001111", "--first-name", "Ada", "--last-name", "Lovelace",
		"--password", "hunter2", "--tos")
	if err != nil {
		t.Fatalf("user create: %v", err)
	}
	mustContain(t, out, "User 5550001111 created")

	got := server.last(t)
	if got.Method != "POST" || got.Path != "/users" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	want := map[string]any{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"phone":        "5550001111",
		"password":     "hunter2",
		"tosAgreement": true,
	}
	for k, v := range want {
		if got.Body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, got.Body[k], v)
		}
	}
}

func TestUserCreate_ServerError(t *testing.T) {
	server := newMockServer(t)
	server.handle("/users", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusBadRequest, "A user with that phone number already exists")
	})

	_, err := run(t, server, "user", "create",
		"--phone", "5550001111", "--first-name", "Ada", "--last-name", "Lovelace", "--password", "x")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("err = %v, want the server message", err)
	}
}

func TestUserCreate_MissingFlag(t *testing.T) {
	server := newMockServer(t)
	if _, err := run(t, server, "user", "create", "--phone", "5550001111"); err == nil {
		t.Error("expected error for missing required flags")
	}
}

func TestUserGet(t *testing.T) {
	server := newMockServer(t)
	server.reply("/users", http.StatusOK, map[string]any{
		"firstName": "Ada", "lastName": "Lovelace", "phone": "5550001111", "tosAgreement": true,
	})

	out, err := run(t, server, "--token", "abcdefghij0123456789", "user", "get", "--phone", "5550001111")
	if err != nil {
		t.Fatalf("user get: %v", err)
	}
	mustContain(t, out, "firstName", "Lovelace", "tosAgreement", "true")

	got := server.last(t)
	if got.Method != "GET" || got.Query["phone"] != "5550001111" {
		t.Errorf("request = %s %v", got.Method, got.Query)
	}
	if got.Token != "abcdefghij0123456789" {
		t.Errorf("token = %q", got.Token)
	}
	if strings.Contains(out, "hashedPassword") {
		t.Error("password digest printed")
	}
}

func TestUserGet_JSON(t *testing.T) {
	server := newMockServer(t)
	server.reply("/users", http.StatusOK, map[string]any{"firstName": "Ada", "phone": "5550001111"})

	out, err := run(t, server, "-o", "json", "user", "get", "--phone", "5550001111")
	if err != nil {
		t.Fatalf("user get: %v", err)
	}
	mustContain(t, out, `"firstName": "Ada"`, `"phone": "5550001111"`)
}

func TestUserGet_Forbidden(t *testing.T) {
	server := newMockServer(t)
	server.handle("/users", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusForbidden, "Missing required token in header, or token is invalid")
	})

	_, err := run(t, server, "user", "get", "--phone", "5550001111")
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Errorf("err = %v, want a 403", err)
	}
}

func TestUserUpdate(t *testing.T) {
	server := newMockServer(t)
	server.reply("/users", http.StatusOK, map[string]any{})

	out, err := run(t, server, "--token", "tok", "user", "update", "--phone", "5550001111", "--last-name", "Byron")
	if err != nil {
		t.Fatalf("user update: %v", err)
	}
	mustContain(t, out, "User 5550001111 updated")

	got := server.last(t)
	if got.Method != "PUT" {
		t.Errorf("method = %s", got.Method)
	}
	if got.Body["lastName"] != "Byron" || got.Body["phone"] != "5550001111" {
		t.Errorf("body = %v", got.Body)
	}
	for _, unset := range []string{"firstName", "password"} {
		if _, ok := got.Body[unset]; ok {
			t.Errorf("body carries unset field %s", unset)
		}
	}
}

func TestUserUpdate_NothingToUpdate(t *testing.T) {
	server := newMockServer(t)
	if _, err := run(t, server, "user", "update", "--phone", "5550001111"); err == nil {
		t.Error("expected error when no field is set")
	}
}

func TestUserDelete(t *testing.T) {
	server := newMockServer(t)
	server.reply("/users", http.StatusOK, map[string]any{})

	out, err := run(t, server, "--token", "tok", "user", "delete", "--phone", "5550001111")
	if err != nil {
		t.Fatalf("user delete: %v", err)
	}
	mustContain(t, out, "User 5550001111 deleted")

	got := server.last(t)
	if got.Method != "DELETE" || got.Query["phone"] != "5550001111" || got.Token != "tok" {
		t.Errorf("request = %+v", got)
	}
}
