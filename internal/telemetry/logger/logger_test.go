package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_Formats(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer

	New(Config{Level: "info", Format: "json", Output: &jsonBuf}).Info("hello", "k", "v")
	entry := decode(t, &jsonBuf)
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("json entry = %v", entry)
	}

	New(Config{Level: "info", Format: "text", Output: &textBuf}).Info("hello", "k", "v")
	if !strings.Contains(textBuf.String(), "k=v") {
		t.Errorf("text output = %q", textBuf.String())
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Output: &buf})
	defer SetLevel("info")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	if GetLevel() != "warn" {
		t.Errorf("GetLevel() = %q, want warn", GetLevel())
	}

	SetLevel("debug")
	l.Debug("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("SetLevel(debug) should enable debug on existing loggers")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]string{
		"debug": "debug", "DEBUG": "debug", "warning": "warn", "error": "error", "bogus": "info",
	} {
		SetLevel(in)
		if got := GetLevel(); got != want {
			t.Errorf("SetLevel(%q) -> GetLevel() = %q, want %q", in, got, want)
		}
	}
	SetLevel("info")
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "01HZX")

	if RequestIDFromContext(ctx) != "01HZX" {
		t.Errorf("RequestIDFromContext() = %q", RequestIDFromContext(ctx))
	}
	L(ctx).Info("handled")
	if entry := decode(t, &buf); entry["request_id"] != "01HZX" {
		t.Errorf("request_id = %v", entry["request_id"])
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext() without logger should return the default")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("RequestIDFromContext() without id should be empty")
	}
}
