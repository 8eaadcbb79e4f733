// Package buildinfo reports which quill build is running.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden by the Makefile through -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = "unknown"
	// Date is an RFC 3339 UTC timestamp.
	Date = "unknown"
)

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// GetInfo returns the current build information. Binaries installed with
// `go install` carry no ldflags, so the module version and VCS stamp recorded
// by the toolchain fill in whatever was left at its default.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns a human-readable version line such as
// "quill v1.2.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z)".
// Bare numeric versions get a "v" prefix; "dev" and tags that already
// carry one are printed as is.
func (i Info) String() string {
	v := i.Version
	if v != "" && v[0] >= '0' && v[0] <= '9' {
		v = "v" + v
	}
	return fmt.Sprintf("quill %s (commit: %s, built: %s)", v, i.Commit, i.Date)
}
