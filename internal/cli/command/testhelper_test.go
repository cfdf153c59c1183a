package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

// recorded is one request seen by the mock server.
type recorded struct {
	Method string
	Path   string
	Query  map[string]string
	Token  string
	Body   map[string]any
}

// mockServer is a test HTTP server with per-path handlers that records
// every request it receives.
type mockServer struct {
	*httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recorded
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Token:  r.Header.Get("token"),
		}
		for k := range r.URL.Query() {
			rec.Query[k] = r.URL.Query().Get(k)
		}
		json.NewDecoder(r.Body).Decode(&rec.Body)

		m.mu.Lock()
		m.requests = append(m.requests, rec)
		h, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if !ok {
			jsonResponse(w, http.StatusNotFound, map[string]any{})
			return
		}
		h(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(path string, h http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = h
}

// reply registers a handler that always answers status with data.
func (m *mockServer) reply(path string, status int, data any) {
	m.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, status, data)
	})
}

// last returns the most recent request.
func (m *mockServer) last(t *testing.T) recorded {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		t.Fatal("server received no request")
	}
	return m.requests[len(m.requests)-1]
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"Error": message})
}

// run executes the CLI with args against server and returns stdout. Unless
// args name a profile, an empty one in a temp dir is used.
func run(t *testing.T, server *mockServer, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	full := []string{"stakewatch-cli"}
	if !slices.Contains(args, "--config") {
		full = append(full, "--config", filepath.Join(t.TempDir(), "cli.yaml"))
	}
	if server != nil {
		full = append(full, "--server", server.URL)
	}
	full = append(full, args...)
	err := app.Run(full)
	return stdout.String(), err
}

func mustContain(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
