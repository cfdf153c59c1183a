// Package buildinfo reports the stakewatch build version.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/stakewatch/internal/infra/buildinfo.Version=v1.0.0"
//
// Values left unset fall back to what the Go toolchain embedded in the
// binary (module version, vcs revision and time).
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the resolved build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

var (
	once sync.Once
	info Info
)

// Get returns the build information.
func Get() Info {
	once.Do(func() {
		info = resolve(Version, Commit, BuildTime, readBuildInfo())
	})
	return info
}

func readBuildInfo() *debug.BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return bi
}

func resolve(version, commit, buildTime string, bi *debug.BuildInfo) Info {
	out := Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
	if bi == nil {
		return out
	}
	if out.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		out.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if out.Commit == "unknown" {
				if len(s.Value) > 12 {
					out.Commit = s.Value[:12]
				} else {
					out.Commit = s.Value
				}
			}
		case "vcs.time":
			if out.BuildTime == "unknown" {
				out.BuildTime = s.Value
			}
		}
	}
	if bi.GoVersion != "" {
		out.GoVersion = bi.GoVersion
	}
	return out
}

// String formats the version for --version output.
func String() string {
	i := Get()
	return i.Version + " (" + i.Commit + ") built at " + i.BuildTime
}
