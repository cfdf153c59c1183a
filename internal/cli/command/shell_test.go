package command

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
)

func TestShell(t *testing.T) {
	server := newMockServer(t)
	server.reply("/ping", http.StatusOK, map[string]any{})
	server.reply("/validators/count", http.StatusOK, map[string]int{"count": 7})

	var stdout bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &bytes.Buffer{}
	app.Reader = strings.NewReader("ping\nvalidators count\nvalid\nexit\n")

	history := filepath.Join(t.TempDir(), "history")
	err := app.Run([]string{"stakewatch-cli",
		"--config", filepath.Join(t.TempDir(), "cli.yaml"),
		"--server", server.URL,
		"--token", "sessiontoken",
		"shell", "--history-file", history,
	})
	if err != nil {
		t.Fatalf("shell: %v", err)
	}

	out := stdout.String()
	mustContain(t, out, "stakewatch> ", "status", "count", "7", "Error:", "Did you mean: validators")
	if got := server.last(t); got.Path != "/validators/count" || got.Token != "sessiontoken" {
		t.Errorf("last request = %+v", got)
	}
}

func TestCommandNames(t *testing.T) {
	names := commandNames(App().Commands, "")
	has := make(map[string]bool)
	for _, n := range names {
		has[n] = true
	}
	for _, want := range []string{"ping", "user", "user create", "token revoke", "validators list", "snapshot build"} {
		if !has[want] {
			t.Errorf("missing %q in %v", want, names)
		}
	}
	if has["shell"] {
		t.Error("shell should not complete to itself")
	}
}
