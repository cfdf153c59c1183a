package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name                     string
		version, commit, built   string
		bi                       *debug.BuildInfo
		wantVersion, wantCommit  string
		wantBuilt, wantGoVersion string
	}{
		{"embedded fallback", "dev", "unknown", "unknown", bi,
			"v0.3.1", "0123456789ab", "2026-01-02T03:04:05Z", "go1.24.2"},
		{"ldflags win", "v1.0.0", "abc123", "today", bi,
			"v1.0.0", "abc123", "today", "go1.24.2"},
		{"devel module", "dev", "unknown", "unknown",
			&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			"dev", "unknown", "unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.built, tt.bi)
			if got.Version != tt.wantVersion || got.Commit != tt.wantCommit || got.BuildTime != tt.wantBuilt {
				t.Errorf("resolve() = %+v", got)
			}
			if tt.wantGoVersion != "" && got.GoVersion != tt.wantGoVersion {
				t.Errorf("GoVersion = %q, want %q", got.GoVersion, tt.wantGoVersion)
			}
			if got.GoVersion == "" {
				t.Error("GoVersion is empty")
			}
		})
	}
}

func TestString(t *testing.T) {
	s := String()
	i := Get()
	if !strings.HasPrefix(s, i.Version+" (") || !strings.HasSuffix(s, "built at "+i.BuildTime) {
		t.Errorf("String() = %q", s)
	}
}
